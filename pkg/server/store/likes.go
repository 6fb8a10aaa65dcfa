package store

// LikesStore abstracts persistence of meme reactions.
// Reactions are kept as strings so that values written by older versions
// survive a round trip even when they are no longer recognised.
type LikesStore interface {
	// LoadLikes returns every recorded reaction keyed by meme file name,
	// in the order they were recorded.
	LoadLikes() (map[string][]string, error)

	// AppendLike records one more reaction for a meme.
	AppendLike(filename, reaction string) error
}
