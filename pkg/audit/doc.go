// Package audit records bot activity as RFC5424 syslog lines.
//
// # Event Types
//
//   - Likes pressed on posted memes
//   - Memes added through /add and memes sent to a chat
//   - Post interval changes
//   - Group binding
//
// # Usage
//
//	audit.Log(audit.LikeEvent{UserID: 7, Meme: "cat.jpg", Reaction: "heart", Total: 3})
//
// Lines go to stdout. When AUDIT_DATABASE_URL is set they are also stored
// in the messages table.
package audit
