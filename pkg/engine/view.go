package engine

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/state"
	"github.com/jwebster45206/plaidlibs/pkg/workflow"
)

// View is what the UI shows for the session's current state.
type View struct {
	Workflow string      `json:"workflow"`
	Narrator string      `json:"narrator"`
	Phase    state.Phase `json:"phase"`
	Step     int         `json:"step"`
	Steps    int         `json:"steps"`
	Title    string      `json:"title"`
	Text     string      `json:"text"`
	Terminal bool        `json:"terminal"` // a result is on screen
	Error    string      `json:"error,omitempty"`
}

// Render describes the session's current display. It does not mutate the session.
func (e *Engine) Render(s *state.Session) View {
	w, _ := workflow.Get(s.Workflow)
	n := e.narrator(s)
	v := View{
		Workflow: s.Workflow,
		Narrator: n.Name,
		Phase:    s.Phase,
		Step:     s.CurrentStep,
		Steps:    len(w.Steps),
		Error:    s.LastError,
	}

	switch s.Phase {
	case state.PhaseGenerated:
		v.Terminal = true
		v.Title = resultTitle(w.Output)
		v.Text = e.resultText(s, w)
		return v
	case state.PhaseAssembling:
		v.Title = "Generation"
		v.Text = fmt.Sprintf("All set! %s is weaving your words into magic...\n\n%s", n.Name, configSummary(s))
		if s.LastError != "" {
			v.Text += "\n\nGeneration failed. Retry to send the same prompt again."
		}
		return v
	}

	step, ok := w.Step(s.CurrentStep)
	if !ok {
		v.Title = w.Name
		v.Text = "Choose a workflow to begin."
		return v
	}
	v.Title = fmt.Sprintf("Step %d: %s", s.CurrentStep, step.Title)

	var b strings.Builder
	switch step.Kind {
	case workflow.StepChoice, workflow.StepTags:
		b.WriteString(step.Prompt)
		if s.Menu != nil {
			b.WriteString("\n" + s.Menu.Text)
		}
	case workflow.StepConfirm:
		fmt.Fprintf(&b, "%s\n\n%s\n\n%s", n.Intro, configSummary(s), step.Prompt)
	case workflow.StepSeeds:
		e.renderSeed(&b, s, step)
	case workflow.StepChat:
		b.WriteString(chatText(s.ChatHistory))
	default:
		b.WriteString(step.Prompt)
	}
	v.Text = b.String()
	return v
}

func (e *Engine) renderSeed(b *strings.Builder, s *state.Session, step workflow.Step) {
	if s.SeedsCollected >= len(e.cat.SeedSlots) {
		b.WriteString(step.Prompt)
		return
	}
	slot := e.cat.SeedSlots[s.SeedsCollected]
	fmt.Fprintf(b, "Prompt %d of %d:\n\n%s\n%s\n\n%s\n\nYour answer (or type %q):",
		s.SeedsCollected+1, s.SeedsNeeded, slot.Title, slot.Hint, step.Prompt, SurpriseMe)
}

func (e *Engine) resultText(s *state.Session, w workflow.Workflow) string {
	var parts []string
	if s.Story != "" {
		parts = append(parts, s.Story)
	}
	if s.VisualPrompt != "" && w.Output != workflow.OutputStory {
		parts = append(parts, s.VisualPrompt)
	}
	if len(s.Image) > 0 {
		parts = append(parts, fmt.Sprintf("[image: %s, %d bytes]", s.ImageMIME, len(s.Image)))
	}
	if len(w.Remixes) > 0 {
		parts = append(parts, "Remix or restart:\n"+e.RemixMenu(s).Text)
	}
	return strings.Join(parts, "\n\n")
}

func resultTitle(out workflow.Output) string {
	switch out {
	case workflow.OutputVisual:
		return "Your visual"
	case workflow.OutputPlay:
		return "Round results"
	case workflow.OutputChat:
		return "Chat"
	}
	return "Your story"
}

func configSummary(s *state.Session) string {
	var lines []string
	for _, entry := range s.Selections.Entries() {
		if entry.Value == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", titleCase(string(entry.Point)), entry.Value))
	}
	if s.Selections.ImageUploaded {
		lines = append(lines, "- Image: uploaded")
	}
	if s.Players > 0 {
		lines = append(lines, fmt.Sprintf("- Players: %d", s.Players))
	}
	return strings.Join(lines, "\n")
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func chatText(history []chat.ChatMessage) string {
	var b strings.Builder
	for i, m := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		who := "You"
		if m.Role == chat.ChatRoleAgent {
			who = "Narrator"
		}
		fmt.Fprintf(&b, "%s: %s", who, m.Content)
	}
	return b.String()
}
