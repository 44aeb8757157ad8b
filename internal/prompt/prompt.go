// Package prompt holds the system prompts and user-prompt formatting for all
// generation flows. Callers sanitize user text before passing it in.
package prompt

import (
	"fmt"
	"strings"
)

// Message windows: how many trailing messages each flow includes.
const (
	BriefingWindow     = 20
	BriefingV2Window   = 30
	SummaryWindow      = 50
	BatchSummaryWindow = 50
	DraftWindow        = 15
)

// Line is one sanitized message line rendered into a user prompt.
type Line struct {
	Sender   string
	Text     string
	Outgoing bool
}

// SystemBriefing is the system prompt for the legacy category briefing.
const SystemBriefing = `You are an AI assistant that analyzes Telegram chat messages and provides smart briefings.

For each chat, you must:
1. Categorize it as one of: "urgent" (requires immediate attention), "needs_reply" (waiting for your response), or "fyi" (informational only)
2. Provide a concise summary (1-2 sentences)
3. Extract 1-3 key points
4. Suggest an action if needed

Respond in JSON format matching this schema:
{
  "category": "urgent" | "needs_reply" | "fyi",
  "summary": "string",
  "key_points": ["string"],
  "suggested_action": "string or null"
}

Consider these factors for categorization:
- URGENT: Time-sensitive requests, emergencies, important deadlines mentioned
- NEEDS_REPLY: Questions asked to you, requests waiting for your response
- FYI: News, updates, broadcasts, messages that don't require action`

// SystemBriefingV2 is the system prompt for priority classification.
const SystemBriefingV2 = `You analyze Telegram chats and classify their priority.

You will receive:
- Chat messages (with sender, text, date, is_outgoing flag)
- Pre-computed signals about the conversation

CLASSIFICATION RULES:

**URGENT** - Requires immediate action:
- Contains: "urgent", "asap", "deadline", "emergency", "critical", "important"
- Mentions specific dates/times for something due soon
- Multiple rapid messages showing frustration or urgency

**NEEDS_REPLY** - Someone is waiting for your response:
- last_message_is_outgoing=false AND is_private_chat=true (they messaged you in DM)
- has_unanswered_question=true (they asked a question you haven't answered)
- Clear requests: "can you", "please", "let me know", "waiting for", "need your"
- You're directly addressed or asked for input

**FYI** - No action needed:
- last_message_is_outgoing=true (you already replied)
- Channel broadcasts or announcements
- Group discussions where you're not addressed
- Automated messages or notifications
- General news/updates

IMPORTANT: If last_message_is_outgoing=true, it's almost always FYI (you already responded).
If is_private_chat=true AND last_message_is_outgoing=false, it's almost always NEEDS_REPLY.

Respond in JSON:
{
  "priority": "urgent" | "needs_reply" | "fyi",
  "summary": "1-2 sentence summary",
  "suggested_reply": "natural reply text or null if fyi"
}`

// SystemSummary is the system prompt for short plain-text summaries.
const SystemSummary = `You are an AI assistant that summarizes Telegram chat conversations.
Provide a concise, informative summary that captures the key points of the conversation.
Focus on:
- Main topics discussed
- Any decisions made
- Action items or requests
- Important information shared

Keep the summary brief and to the point.`

// SystemDetailedSummary is the system prompt for structured batch summaries.
const SystemDetailedSummary = `You are an AI assistant that provides detailed summaries of Telegram conversations.

Analyze the conversation and provide:
1. A concise summary (2-3 sentences)
2. Key points discussed (up to 3)
3. Action items mentioned (up to 3)
4. Overall sentiment: "positive", "neutral", or "negative"
5. Whether the conversation needs a response from the user (true/false)

Respond in JSON format:
{
  "summary": "string",
  "key_points": ["string"],
  "action_items": ["string"],
  "sentiment": "positive" | "neutral" | "negative",
  "needs_response": boolean
}`

// SystemDraft is the system prompt for draft reply generation.
const SystemDraft = `You are an AI assistant helping a user draft a message in Telegram.

IMPORTANT: You are writing a message on behalf of "You" (the user). The conversation shows messages between "You" and other participants.

Your task:
- Write a draft message that "You" will send
- If the last message is from someone else, respond to their message
- If the last message is from "You", help continue or follow up naturally
- Match the tone and style of the conversation
- Address any questions or requests from the other person
- Be concise and natural

Do NOT:
- Respond as if you are the other person
- Be overly formal unless the conversation is formal
- Include placeholders like [name] or [topic]
- Be robotic or generic
- Make up information

Output ONLY the draft message text, nothing else.`

// BriefingUser formats the user prompt for the legacy briefing.
func BriefingUser(title, chatType string, lines []Line) string {
	return fmt.Sprintf(`Analyze this Telegram chat and provide a briefing:

Chat: %s (%s)

Recent messages:
%s

Provide your analysis in JSON format.`, title, chatType, renderOutgoingAsYou(lines))
}

// BriefingV2User formats the user prompt for priority classification,
// including the pre-computed signal block.
func BriefingV2User(title, chatType string, unread int, lastOutgoing, unanswered bool, hoursSinceActivity float64, private bool, lines []Line) string {
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = fmt.Sprintf("[%s]: %s", l.Sender, l.Text)
	}

	return fmt.Sprintf(`Chat: %s (%s)

SIGNALS:
- unread_count: %d
- last_message_is_outgoing: %t
- has_unanswered_question: %t
- hours_since_last_activity: %.1f
- is_private_chat: %t

MESSAGES:
%s`, title, chatType, unread, lastOutgoing, unanswered, hoursSinceActivity, private, strings.Join(rendered, "\n"))
}

// SummaryUser formats the user prompt for a short plain-text summary.
func SummaryUser(maxLength int, lines []Line) string {
	return fmt.Sprintf(`Summarize this conversation in %d characters or less:

%s`, maxLength, renderOutgoingAsYou(lines))
}

// DetailedSummaryUser formats the user prompt for a structured summary.
func DetailedSummaryUser(title, chatType string, lines []Line) string {
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = fmt.Sprintf("%s: %s", l.Sender, l.Text)
	}

	return fmt.Sprintf(`Analyze this conversation and provide a detailed summary:

Chat: %s (%s)

Messages:
%s

Provide your analysis in JSON format.`, title, chatType, strings.Join(rendered, "\n"))
}

// DraftUser formats the user prompt for draft generation, with a hint about
// who sent the last message.
func DraftUser(title string, lines []Line) string {
	rendered := make([]string, len(lines))
	for i, l := range lines {
		rendered[i] = fmt.Sprintf("%s: %s", l.Sender, l.Text)
	}

	hint := "Start the conversation naturally."
	if len(lines) > 0 {
		last := lines[len(lines)-1]
		if last.Outgoing {
			hint = "The last message was from You. Write a follow-up or continue the conversation."
		} else {
			hint = fmt.Sprintf("The last message was from %s. Write a reply to them.", last.Sender)
		}
	}

	return fmt.Sprintf(`Generate a draft message for this conversation:

Chat with: %s

Recent messages:
%s

%s

Write the draft message that "You" will send:`, title, strings.Join(rendered, "\n"), hint)
}

func renderOutgoingAsYou(lines []Line) string {
	rendered := make([]string, len(lines))
	for i, l := range lines {
		sender := l.Sender
		if l.Outgoing {
			sender = "You"
		}
		rendered[i] = fmt.Sprintf("%s: %s", sender, l.Text)
	}
	return strings.Join(rendered, "\n")
}
