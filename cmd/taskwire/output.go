package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"taskwire/internal/format"
	"taskwire/internal/models"
	"taskwire/internal/store"
)

// outputOptions carries the persistent output flags. Structured output is
// on when --json or --output is given; otherwise commands print plain text.
type outputOptions struct {
	json          bool
	format        string
	defaultFormat string
}

func (o *outputOptions) structured() bool {
	return o.json || strings.TrimSpace(o.format) != ""
}

func (o *outputOptions) formatter() (format.Formatter, error) {
	name := o.defaultFormat
	if o.json {
		name = format.NameJSON
	}
	if strings.TrimSpace(o.format) != "" {
		name = o.format
	}
	return format.ForName(name)
}

func writeStructured(w io.Writer, out *outputOptions, payload any) error {
	f, err := out.formatter()
	if err != nil {
		return err
	}
	return f.Write(w, payload)
}

func writePlain(w io.Writer, format string, args ...any) error {
	_, err := fmt.Fprintf(w, format, args...)
	return err
}

func writeLines(w io.Writer, lines []string) error {
	if len(lines) == 0 {
		return nil
	}
	return writePlain(w, "%s\n", strings.Join(lines, "\n"))
}

func writeTaskDetail(w io.Writer, task *models.TaskRecord) error {
	lines := []string{
		fmt.Sprintf("id: %d", task.ID),
		fmt.Sprintf("name: %s", task.Name),
		fmt.Sprintf("status: %s", formatStatus(task.Status)),
		fmt.Sprintf("incident: %d (%s)", task.IncidentID, task.IncidentName),
		fmt.Sprintf("owner: %s", formatOwner(task)),
		fmt.Sprintf("required: %t", task.Required),
		fmt.Sprintf("active: %t", task.Active),
		fmt.Sprintf("members: %s", formatMembers(task)),
	}

	if task.DueDate != nil {
		lines = append(lines, fmt.Sprintf("due_date: %s", formatTime(*task.DueDate)))
	}
	if !task.ActivationDate.IsZero() {
		lines = append(lines, fmt.Sprintf("init_date: %s", formatTime(task.ActivationDate)))
	}
	if task.ClosedDate != nil {
		lines = append(lines, fmt.Sprintf("closed_date: %s", formatTime(*task.ClosedDate)))
	}
	if task.CategoryName != "" {
		lines = append(lines, fmt.Sprintf("category: %s", task.CategoryName))
	}
	if task.PhaseID != nil {
		lines = append(lines, fmt.Sprintf("phase: %s", task.PhaseID))
	}
	if task.AutoTaskID != nil {
		lines = append(lines, fmt.Sprintf("auto_task: %s", task.AutoTaskID))
	}
	if task.TrainingIncident {
		lines = append(lines, "training incident: true")
	}
	if task.Frozen {
		lines = append(lines, "frozen: true")
	}
	if task.Creator != nil {
		lines = append(lines, fmt.Sprintf("creator: %s", formatUser(task.Creator)))
	}
	if task.Description != nil && *task.Description != "" {
		lines = append(lines, fmt.Sprintf("description: %s", *task.Description))
	}
	if task.CustomInstructions != nil && *task.CustomInstructions != "" {
		lines = append(lines, fmt.Sprintf("instructions: %s", *task.CustomInstructions))
	}
	if task.Regulators != nil && len(task.Regulators.Regulators) > 0 {
		names := make([]string, 0, len(task.Regulators.Regulators))
		for _, reg := range task.Regulators.Regulators {
			names = append(names, reg.Name)
		}
		lines = append(lines, fmt.Sprintf("regulators: %s", strings.Join(names, ", ")))
	}
	lines = append(lines, fmt.Sprintf("notes: %d, attachments: %d", task.NotesCount, task.AttachmentsCount))
	if len(task.Notes) > 0 {
		lines = appendNoteLines(lines, task.Notes, "  ")
	}
	if len(task.Actions) > 0 {
		lines = append(lines, "actions:")
		for _, action := range task.Actions {
			state := "enabled"
			if !action.Enabled {
				state = "disabled"
			}
			lines = append(lines, fmt.Sprintf("  - %s (%s)", action.Name, state))
		}
	}

	return writeLines(w, lines)
}

func appendNoteLines(lines []string, notes []models.Comment, indent string) []string {
	for _, note := range notes {
		author := strings.TrimSpace(note.UserFirstName + " " + note.UserLastName)
		if author == "" {
			author = "unknown"
		}
		text := note.Text
		if note.Deleted {
			text = "[deleted]"
		}
		lines = append(lines, fmt.Sprintf("%s- %s: %s", indent, author, text))
		if len(note.Children) > 0 {
			lines = appendNoteLines(lines, note.Children, indent+"  ")
		}
	}
	return lines
}

func writeSummaryList(w io.Writer, summaries []store.Summary) error {
	lines := make([]string, 0, len(summaries))
	for _, s := range summaries {
		lines = append(lines, formatSummaryLine(s))
	}
	return writeLines(w, lines)
}

func formatSummaryLine(s store.Summary) string {
	marker := "○"
	if models.TaskStatus(s.Status) == models.StatusClosed {
		marker = "✓"
	}
	return fmt.Sprintf("%s %d [inc %d] - %s", marker, s.ID, s.IncidentID, s.Name)
}

func writeRevisionList(w io.Writer, revisions []store.Revision) error {
	lines := make([]string, 0, len(revisions))
	for _, r := range revisions {
		lines = append(lines, fmt.Sprintf("#%d %s %s %s", r.Seq, r.Revision, shortFingerprint(r.Fingerprint), formatTime(r.StoredAt)))
	}
	return writeLines(w, lines)
}

func formatStatus(status models.TaskStatus) string {
	if label := status.Label(); label != "" {
		return fmt.Sprintf("%s (%s)", status, label)
	}
	return fmt.Sprintf("%s (unknown)", status)
}

func formatOwner(task *models.TaskRecord) string {
	name := strings.TrimSpace(task.OwnerFirstName + " " + task.OwnerLastName)
	switch {
	case task.OwnerID == nil && name == "":
		return "unassigned"
	case task.OwnerID == nil:
		return name
	case name == "":
		return task.OwnerID.String()
	}
	return fmt.Sprintf("%s (%s)", name, task.OwnerID)
}

func formatMembers(task *models.TaskRecord) string {
	if task.VisibleToAllMembers() {
		return "all incident members"
	}
	if len(task.Members) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(task.Members))
	for _, m := range task.Members {
		parts = append(parts, m.String())
	}
	return strings.Join(parts, ", ")
}

func formatUser(u *models.User) string {
	name := u.DisplayName
	if name == "" {
		name = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if u.Email != "" {
		return fmt.Sprintf("%s <%s>", name, u.Email)
	}
	return name
}

func shortFingerprint(fp string) string {
	if len(fp) > 12 {
		return fp[:12]
	}
	return fp
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
