package assistant

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	domerrors "github.com/sisemasexp/portal/internal/errors"
	"github.com/sisemasexp/portal/internal/storage"
	"github.com/sisemasexp/portal/internal/stringutil"
)

// Directory is the read side of the program catalog used by the assistant.
type Directory interface {
	// ListPrograms returns every program ordered by code ascending.
	ListPrograms(ctx context.Context) ([]storage.Program, error)
	// GetProgramByCode returns errors.ErrNotFound when code is absent.
	GetProgramByCode(ctx context.Context, code int) (*storage.Program, error)
}

// Reply is the locally composed answer to one message.
type Reply struct {
	Intent Intent
	Text   string
	// Err is set when a directory failure was replaced by an apology.
	Err error
}

// Composer turns a message into its rule-based reply.
type Composer struct {
	dir     Directory
	mission string
	vision  string
}

// NewComposer creates a composer reading programs from dir.
func NewComposer(dir Directory, mission, vision string) *Composer {
	return &Composer{dir: dir, mission: mission, vision: vision}
}

// Compose classifies raw and renders the reply for its intent. Empty input
// yields PromptEmpty without classification. Directory failures never produce
// an empty list; they yield ApologyStorage with Reply.Err set.
func (c *Composer) Compose(ctx context.Context, raw string) Reply {
	normalized := Normalize(raw)
	if normalized == "" {
		return Reply{Intent: IntentNone, Text: PromptEmpty}
	}

	intent := Classify(normalized)
	text, err := c.render(ctx, intent, normalized)
	if err != nil {
		return Reply{Intent: intent, Text: ApologyStorage, Err: err}
	}
	return Reply{Intent: intent, Text: text}
}

func (c *Composer) render(ctx context.Context, intent Intent, normalized string) (string, error) {
	switch intent {
	case IntentGreeting:
		return ReplyGreeting, nil
	case IntentThanks:
		return ReplyThanks, nil
	case IntentHelp:
		return ReplyHelp, nil
	case IntentListPrograms:
		return c.listPrograms(ctx)
	case IntentLookupByCode:
		return c.lookupByCode(ctx, normalized)
	case IntentSearchByName:
		return c.searchByName(ctx, normalized)
	case IntentMission:
		return c.mission, nil
	case IntentVision:
		return c.vision, nil
	case IntentNone:
		return ReplyNotUnderstood, nil
	default:
		panic(fmt.Sprintf("assistant: unhandled intent %d", intent))
	}
}

func (c *Composer) listPrograms(ctx context.Context) (string, error) {
	programs, err := c.dir.ListPrograms(ctx)
	if err != nil {
		return "", err
	}
	if len(programs) == 0 {
		return ReplyNoPrograms, nil
	}
	return ReplyProgramsIntro + FormatPrograms(programs, programsSeparator), nil
}

func (c *Composer) lookupByCode(ctx context.Context, normalized string) (string, error) {
	code, ok := firstInteger(normalized)
	if !ok {
		return PromptCode, nil
	}
	p, err := c.dir.GetProgramByCode(ctx, code)
	if domerrors.IsNotFound(err) {
		return fmt.Sprintf(replyCodeNotFound, code), nil
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(replyCodeFound, p.Code, p.Name), nil
}

func (c *Composer) searchByName(ctx context.Context, normalized string) (string, error) {
	keywords := ExtractKeywords(normalized)
	if len(keywords) == 0 {
		return PromptKeyword, nil
	}
	programs, err := c.dir.ListPrograms(ctx)
	if err != nil {
		return "", err
	}
	matches := SuggestMany(keywords, NewCandidates(programs))
	if len(matches) == 0 {
		return ReplySearchNotFound, nil
	}

	var b strings.Builder
	b.WriteString(ReplySearchIntro)
	for _, p := range matches {
		fmt.Fprintf(&b, "\n• %d: %s", p.Code, p.Name)
	}
	return b.String(), nil
}

// FormatPrograms renders "code: name" pairs joined by sep.
func FormatPrograms(programs []storage.Program, sep string) string {
	parts := make([]string, len(programs))
	for i, p := range programs {
		parts[i] = strconv.Itoa(p.Code) + ": " + p.Name
	}
	return strings.Join(parts, sep)
}

// firstInteger returns the first all-digit word of normalized text.
func firstInteger(normalized string) (int, bool) {
	for _, t := range tokens(normalized) {
		if !stringutil.IsNumeric(t) {
			continue
		}
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
