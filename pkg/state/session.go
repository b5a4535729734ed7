package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/plaidlibs/pkg/chat"
	"github.com/jwebster45206/plaidlibs/pkg/menu"
	"github.com/jwebster45206/plaidlibs/pkg/play"
)

// Phase is the coarse position of a session in its workflow.
type Phase string

const (
	PhaseSelecting       Phase = "selecting"
	PhaseCollectingSeeds Phase = "collecting_seeds"
	PhaseAssembling      Phase = "assembling" // prompt built, waiting on generation
	PhaseGenerated       Phase = "generated"
)

// PromptHistoryLimit caps how many chat messages are replayed to the LLM.
const PromptHistoryLimit = 10

// Session is one user's guided-dialogue state.
type Session struct {
	ID          uuid.UUID `json:"id"`
	Workflow    string    `json:"workflow"`
	Narrator    string    `json:"narrator"`
	Phase       Phase     `json:"phase,omitempty"`
	CurrentStep int       `json:"current_step"` // 1-based; 0 before a workflow starts

	Selections     Selections `json:"selections"`
	Seeds          Seeds      `json:"seeds,omitempty"`
	SeedsCollected int        `json:"seeds_collected"`
	SeedsNeeded    int        `json:"seeds_needed"`

	Menu      *menu.Menu `json:"menu,omitempty"` // menu the next answer is read against
	LastError string     `json:"last_error,omitempty"`

	Prompt       string `json:"prompt,omitempty"`        // assembled text prompt
	VisualPrompt string `json:"visual_prompt,omitempty"` // visual configuration for image variants
	Story        string `json:"story,omitempty"`
	PlainStory   string `json:"plain_story,omitempty"` // Story before seed highlighting
	Image        []byte `json:"image,omitempty"`
	ImageMIME    string `json:"image_mime,omitempty"`
	Remix        string `json:"remix,omitempty"` // last remix applied

	Players     int               `json:"players,omitempty"`
	Submissions []play.Submission `json:"submissions,omitempty"`
	Tally       []play.Score      `json:"tally,omitempty"`
	Winner      string            `json:"winner,omitempty"`

	ChatHistory []chat.ChatMessage `json:"chat_history,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewSession() *Session {
	now := time.Now().UTC()
	return &Session{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset clears everything accumulated for the workflow. ID, workflow, narrator and
// creation time survive.
func (s *Session) Reset() {
	*s = Session{
		ID:        s.ID,
		Workflow:  s.Workflow,
		Narrator:  s.Narrator,
		CreatedAt: s.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
}

// StoryText returns the story without the seed highlight markers.
func (s *Session) StoryText() string {
	if s.PlainStory != "" {
		return s.PlainStory
	}
	return s.Story
}

// Touch stamps UpdatedAt.
func (s *Session) Touch() {
	s.UpdatedAt = time.Now().UTC()
}

// HistoryForPrompt returns the most recent chat messages, at most limit of them.
func (s *Session) HistoryForPrompt(limit int) []chat.ChatMessage {
	if limit <= 0 || len(s.ChatHistory) <= limit {
		return s.ChatHistory
	}
	return s.ChatHistory[len(s.ChatHistory)-limit:]
}
