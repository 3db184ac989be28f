package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/aretw0/coredata/pkg/domain"
)

// Renderer prints resolved data for the CLI.
// On a terminal it renders markdown through glamour; otherwise it writes plain JSON
// so output can be piped.
type Renderer struct {
	out      io.Writer
	styled   bool
	markdown func(string) (string, error)
	profile  termenv.Profile
}

// NewRenderer creates a renderer writing to out.
// forceJSON disables markdown rendering even on a terminal.
func NewRenderer(out io.Writer, forceJSON bool) *Renderer {
	r := &Renderer{
		out:     out,
		styled:  !forceJSON && IsTerminal(out),
		profile: termenv.Ascii,
	}
	if r.styled {
		r.profile = termenv.ColorProfile()
		tr, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err != nil {
			r.styled = false
		} else {
			r.markdown = tr.Render
		}
	}
	return r
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Action prints the payload of a dispatched action.
// A nil action (nothing dispatched) prints a status line.
func (r *Renderer) Action(action domain.Action) error {
	if action == nil {
		r.Status(false, "nothing received")
		return nil
	}
	if !r.styled {
		return r.JSON(actionPayload(action))
	}
	return r.render(ActionMarkdown(action))
}

// Entities prints the registered descriptors.
func (r *Renderer) Entities(entities []domain.Entity) error {
	if !r.styled {
		return r.JSON(entities)
	}
	return r.render(EntitiesMarkdown(entities))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Status prints a one-line colored status.
func (r *Renderer) Status(ok bool, msg string) {
	color := "#f87171"
	mark := "✗"
	if ok {
		color = "#4ade80"
		mark = "✓"
	}
	fmt.Fprintln(r.out, termenv.String(mark+" "+msg).Foreground(r.profile.Color(color)))
}

func (r *Renderer) render(md string) error {
	out, err := r.markdown(md)
	if err != nil {
		return fmt.Errorf("rendering markdown: %w", err)
	}
	_, err = io.WriteString(r.out, out)
	return err
}

func actionPayload(action domain.Action) any {
	switch a := action.(type) {
	case domain.ReceiveEntityRecords:
		if a.Query == nil && len(a.Records) == 1 {
			return a.Records[0]
		}
		return a.Records
	case domain.ReceiveEmbedPreview:
		return a.Preview
	case domain.ReceiveAutosave:
		return a.Autosave
	default:
		return action
	}
}

// ActionMarkdown describes an action as a markdown document.
func ActionMarkdown(action domain.Action) string {
	var b strings.Builder

	switch a := action.(type) {
	case domain.ReceiveEntityRecords:
		fmt.Fprintf(&b, "# %s / %s\n\n", a.Kind, a.Name)
		if a.Query != nil {
			fmt.Fprintf(&b, "%d record(s)\n\n", len(a.Records))
		}
		for _, record := range a.Records {
			if title := recordTitle(record); title != "" {
				fmt.Fprintf(&b, "## %s\n\n", title)
			}
			writeJSONBlock(&b, record)
		}
	case domain.ReceiveEmbedPreview:
		fmt.Fprintf(&b, "# Embed preview\n\n<%s>\n\n", a.URL)
		if !a.Embeddable() {
			b.WriteString("_This URL cannot be embedded._\n")
			break
		}
		writeJSONBlock(&b, a.Preview)
	case domain.ReceiveAutosave:
		fmt.Fprintf(&b, "# Autosave of post %d\n\n", a.PostID)
		writeJSONBlock(&b, a.Autosave)
	default:
		fmt.Fprintf(&b, "# %s\n", action.Type())
	}

	return b.String()
}

// EntitiesMarkdown lists descriptors as a markdown table sorted by kind then name.
func EntitiesMarkdown(entities []domain.Entity) string {
	sorted := make([]domain.Entity, len(entities))
	copy(sorted, entities)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Kind != sorted[j].Kind {
			return sorted[i].Kind < sorted[j].Kind
		}
		return sorted[i].Name < sorted[j].Name
	})

	var b strings.Builder
	b.WriteString("# Entities\n\n| Kind | Name | Base URL | Key |\n| --- | --- | --- | --- |\n")
	for _, e := range sorted {
		fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n", e.Kind, e.Name, e.BaseURL, e.RecordKey())
	}
	return b.String()
}

// recordTitle picks a human label: a rendered title, then name, then slug.
func recordTitle(record domain.Record) string {
	if title, ok := record["title"].(map[string]any); ok {
		if rendered, ok := title["rendered"].(string); ok && rendered != "" {
			return rendered
		}
	}
	for _, field := range []string{"title", "name", "slug"} {
		if s, ok := record[field].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func writeJSONBlock(b *strings.Builder, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(b, "%v\n\n", v)
		return
	}
	b.WriteString("```json\n")
	b.Write(data)
	b.WriteString("\n```\n\n")
}
