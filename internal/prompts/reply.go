package prompts

import "fmt"

// replyDraftTemplate shapes the reply-drafting tool's request. Format
// verbs: comment author, comment text, optional tone instruction.
const replyDraftTemplate = `Draft a reply to this audience comment, written in the owner's voice.

From: %s
Comment: %q

%s
Rules:
- Match the commenter's language.
- One to three sentences, warm but not gushing.
- No hashtags, no emoji walls, at most one emoji.
- Return only the reply text, nothing else.`

// ReplyDraft returns the drafting prompt for one comment. tone may be
// empty.
func ReplyDraft(author, text, tone string) string {
	toneLine := ""
	if tone != "" {
		toneLine = fmt.Sprintf("Requested tone: %s.\n", tone)
	}
	return fmt.Sprintf(replyDraftTemplate, author, text, toneLine)
}
