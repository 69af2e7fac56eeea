package pair

import (
	"fmt"
	"strings"

	"github.com/dlemos/caderno/internal/study"
)

const challengeSystemPrompt = `You are preparing a pair-programming exercise from a study note. Design one challenge the note's subject matter is enough to solve, sized for a single sitting.`

func buildChallengeUserMessage(noteTitle, noteText string) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Note: %s\n\n", noteTitle))
	if noteText != "" {
		b.WriteString("Content:\n")
		b.WriteString(noteText)
		b.WriteString("\n")
	} else {
		b.WriteString("The note is attached as a document.\n")
	}
	b.WriteString("\nInstructions:\nDesign one coding challenge exercising the note's core ideas. Include starter code only when it saves boilerplate, not when it gives away the approach.")
	return b.String()
}

const navigatorSystemPrompt = `You are the navigator in a pair-programming session; the user is the driver. Think out loud about approach and edge cases, let the driver write the code, and suggest code only when the driver is stuck or asks. Keep replies short and conversational.`

func buildTurnUserMessage(item study.Item, history []study.Message, driverCode string) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("Challenge: %s\n%s\n", item.Title, item.Body))

	if dialog := renderDialog(history); dialog != "" {
		b.WriteString("\nSession so far:\n")
		b.WriteString(dialog)
	}

	if driverCode != "" {
		b.WriteString("\nDriver's current code:\n```\n")
		b.WriteString(driverCode)
		b.WriteString("\n```\n")
	}

	b.WriteString("\nRespond as the navigator. Put any code you propose in suggested_code, building on the driver's code rather than restarting.")
	return b.String()
}

func renderDialog(history []study.Message) string {
	var b strings.Builder
	for _, m := range history {
		if m.Type == study.TypeNotice {
			continue
		}
		role := "navigator"
		if m.Role == study.RoleUser {
			role = "driver"
		}
		b.WriteString(fmt.Sprintf("[%s] %s\n", role, m.Content))
	}
	return b.String()
}
