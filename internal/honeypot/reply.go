// Package honeypot implements the honeypot reply generator (C11) and the
// standalone honeypot engine (C13): in-memory sessions that engage a
// scammer, accumulate scam confidence, extract intelligence, and report it
// once to an external callback.
package honeypot

import (
	"context"
	"fmt"
	"log/slog"

	"upishield/internal/llm"
)

// Reply is the output of the reply generator: the text to send back, plus
// a short note describing the conversational stage for the agent log.
type Reply struct {
	Text      string
	AgentNote string
}

type persona struct {
	name      string
	maxCount  int // stage applies while messageCount <= maxCount; 0 = catch-all
	responses []string
}

// personas are tried in order; the first whose maxCount covers the current
// message count wins (spec.md §4.12).
var personas = []persona{
	{
		name:     "confused",
		maxCount: 2,
		responses: []string{
			"Sorry, I don't understand. Can you explain again what this is about?",
			"Wait, what is this regarding? I'm a bit confused.",
		},
	},
	{
		name:     "worried",
		maxCount: 4,
		responses: []string{
			"Oh no, is my account really in danger? What should I do?",
			"This is worrying. Can you tell me more before I do anything?",
		},
	},
	{
		name:     "questioning",
		maxCount: 6,
		responses: []string{
			"How do I know this is really from the bank? Can you share some proof?",
			"Which branch are you calling from? I want to verify this first.",
		},
	},
	{
		name:     "cooperative",
		maxCount: 10,
		responses: []string{
			"Okay, I want to fix this. What exactly do you need from me?",
			"Alright, tell me the steps, I'll try to follow along.",
		},
	},
	{
		name:     "stalling",
		maxCount: 0,
		responses: []string{
			"Give me a moment, I'm checking my phone for the message you mentioned.",
			"I'm still looking into this, can you wait a bit?",
		},
	},
}

const minAcceptableReplyLength = 15

const fixedSafetyReply = "I'm not comfortable sharing that right now. Let me check with my bank directly before I do anything further."

const honeypotSystemPrompt = `You are roleplaying as a cautious but slightly naive Indian bank customer responding to a message that may be a scam. Reply in 2-4 sentences. Never confirm that you have made any payment. Never reveal that you suspect a scam or that you are automated. Ask a follow-up question. Refuse to share any OTP or PIN if asked. Respond with plain text only, no JSON.`

// GenerateReply produces {reply, agentNote} for a scammer message at a
// given conversation stage (message count so far), per spec.md §4.12.
func GenerateReply(ctx context.Context, client *llm.Client, scammerText string, messageCount int) Reply {
	p := selectPersona(messageCount)

	if client != nil {
		userPrompt := fmt.Sprintf("The message you just received:\n%s", scammerText)
		text, err := client.Complete(ctx, honeypotSystemPrompt, userPrompt)
		if err != nil {
			slog.Warn("honeypot: LLM reply generation failed, falling back to persona template", "error", err)
		} else if len(text) >= minAcceptableReplyLength {
			return Reply{Text: text, AgentNote: fmt.Sprintf("stage=%s (LLM-generated)", p.name)}
		}
	}

	canned := p.responses[0]
	if len(p.responses) > 1 {
		canned = p.responses[messageCount%len(p.responses)]
	}
	if len(canned) < minAcceptableReplyLength {
		canned = fixedSafetyReply
	}

	return Reply{Text: canned, AgentNote: fmt.Sprintf("stage=%s (template fallback)", p.name)}
}

func selectPersona(messageCount int) persona {
	for _, p := range personas {
		if p.maxCount == 0 {
			return p
		}
		if messageCount <= p.maxCount {
			return p
		}
	}
	return personas[len(personas)-1]
}
