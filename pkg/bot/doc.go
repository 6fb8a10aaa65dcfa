// Package bot implements the meme bot's Telegram behavior.
//
// Updates arrive through HandleUpdate, from the webhook endpoint or from
// long polling. Commands:
//
//   - /start          confirms the bot is online
//   - /setinterval N  sets the posting interval (admins only, 1..60 minutes)
//   - /add            saves the replied-to photo or image document as a meme
//   - /getgroupid     shows the chat id
//   - /init_group     binds the bot to the current group
//
// Each posted meme carries a row of like buttons whose callback data is
// LIKE_<reaction>|<filename>. Pressing one records the reaction and
// rewrites the caption with the new counts.
package bot
