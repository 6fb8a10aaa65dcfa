package likes

//go:generate go run github.com/dmarkham/enumer -type Reaction -trimprefix Reaction -transform lower -output reaction.gen.go

// Reaction is one of the inline-button reactions a meme can receive
type Reaction int

const (
	ReactionHeart Reaction = iota
	ReactionLove
	ReactionHaha
)

// Emoji returns the button label for the reaction
func (r Reaction) Emoji() string {
	switch r {
	case ReactionHeart:
		return "❤️"
	case ReactionLove:
		return "🔥"
	case ReactionHaha:
		return "😂"
	default:
		return "?"
	}
}

// ParseReaction matches a stored or callback reaction name exactly.
// Unlike ReactionString it does not fold case.
func ParseReaction(s string) (Reaction, bool) {
	for _, r := range ReactionValues() {
		if r.String() == s {
			return r, true
		}
	}
	return 0, false
}
