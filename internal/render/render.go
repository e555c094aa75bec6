// Package render turns task collections into the fixed-width text pages and
// reminder messages shown on the chat surface.
package render

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/taskbot/internal/constants"
	"github.com/yukikurage/taskbot/internal/models"
)

const (
	doneWidth = len("Is Done")
	dateWidth = len("Start Date")
)

// Renderer lays tasks out as a monospaced table. The zero value is not
// usable; start from Default.
type Renderer struct {
	ColumnWidth  int
	MaxPageChars int
}

func Default() Renderer {
	return Renderer{
		ColumnWidth:  constants.ColumnWidth,
		MaxPageChars: constants.MaxPageChars,
	}
}

// Pages renders tasks with the default layout.
func Pages(tasks []*models.Task) []string {
	return Default().Pages(tasks)
}

// Pages splits the rendered table into pages of at most MaxPageChars
// characters, each starting with the header row. A task block that overflows
// the current page starts the next one; a block too large for any page is
// split between rows. Zero tasks yield a single header-only page.
func (r Renderer) Pages(tasks []*models.Task) []string {
	header := r.Header()
	headerLen := utf8.RuneCountInString(header)

	var pages []string
	var buf strings.Builder
	size := 0
	reset := func() {
		buf.Reset()
		buf.WriteString(header)
		size = headerLen
	}
	flush := func() {
		pages = append(pages, buf.String())
		reset()
	}
	reset()

	for _, task := range tasks {
		rows := r.Block(task)
		blockLen := 0
		for _, row := range rows {
			blockLen += utf8.RuneCountInString(row)
		}

		if size+blockLen > r.MaxPageChars && size > headerLen {
			flush()
		}
		if size+blockLen <= r.MaxPageChars {
			for _, row := range rows {
				buf.WriteString(row)
			}
			size += blockLen
			continue
		}

		for _, row := range rows {
			row = r.fitRow(row, headerLen)
			rowLen := utf8.RuneCountInString(row)
			if size+rowLen > r.MaxPageChars && size > headerLen {
				flush()
			}
			buf.WriteString(row)
			size += rowLen
		}
	}

	if size > headerLen || len(pages) == 0 {
		pages = append(pages, buf.String())
	}
	return pages
}

// Header is the fixed first row of every page.
func (r Renderer) Header() string {
	var b strings.Builder
	b.WriteString("`|")
	b.WriteString(pad("Title", r.ColumnWidth))
	b.WriteString("|")
	b.WriteString(pad("Description", r.ColumnWidth))
	b.WriteString("|Is Done|Start Date|")
	b.WriteString(pad("End Date", dateWidth))
	b.WriteString("|Assignees|`\n")
	return b.String()
}

// Block renders one task as one or more table rows. The done flag and dates
// sit on the first row; titles, descriptions and assignees wrap onto
// continuation rows.
func (r Renderer) Block(task *models.Task) []string {
	description := task.Description
	if strings.TrimSpace(description) == "" {
		description = "-"
	}
	titleLines := WrapColumn(task.Title, r.ColumnWidth)
	descLines := WrapColumn(description, r.ColumnWidth)
	mentionLines := WrapColumn(Mentions(task.Assignees), r.ColumnWidth)

	n := max(len(titleLines), len(descLines), len(mentionLines))
	rows := make([]string, 0, n)
	for i := 0; i < n; i++ {
		var b strings.Builder
		b.WriteString("`")
		for _, col := range [][]string{titleLines, descLines} {
			b.WriteString("|")
			if i < len(col) {
				b.WriteString(pad(col[i], r.ColumnWidth))
			} else {
				b.WriteString(strings.Repeat(" ", r.ColumnWidth))
			}
		}
		switch {
		case i == 0:
			end := models.FormatDate(task.EndDate)
			if end == "" {
				end = "-"
			}
			b.WriteString("|")
			b.WriteString(pad(strconv.FormatBool(task.Done), doneWidth))
			b.WriteString("|")
			b.WriteString(pad(task.StartDate.Format(models.DateLayout), dateWidth))
			b.WriteString("|")
			b.WriteString(pad(end, dateWidth))
			b.WriteString("|`")
			b.WriteString(mentionLines[0])
		case i < len(mentionLines):
			b.WriteString("|")
			b.WriteString(strings.Repeat(" ", doneWidth))
			b.WriteString("|")
			b.WriteString(strings.Repeat(" ", dateWidth))
			b.WriteString("|")
			b.WriteString(strings.Repeat(" ", dateWidth))
			b.WriteString("|`")
			b.WriteString(mentionLines[i])
		default:
			b.WriteString("|`")
		}
		b.WriteString("\n")
		rows = append(rows, b.String())
	}
	return rows
}

// fitRow truncates a row that could not fit on a page even on its own. Only
// reachable when MaxPageChars is smaller than a single wrapped row.
func (r Renderer) fitRow(row string, headerLen int) string {
	limit := r.MaxPageChars - headerLen
	if utf8.RuneCountInString(row) <= limit || limit < 1 {
		return row
	}
	runes := []rune(row)
	return string(runes[:limit-1]) + "\n"
}

// WrapColumn greedily packs words into lines of at most width runes.
// A word longer than width is hard-split into width-sized chunks and the
// last chunk keeps accepting words like any other line.
func WrapColumn(text string, width int) []string {
	if width < 1 {
		return []string{text}
	}
	var lines []string
	line := ""
	lineLen := 0
	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case lineLen == 0 && wordLen <= width:
			line, lineLen = word, wordLen
		case lineLen > 0 && lineLen+1+wordLen <= width:
			line += " " + word
			lineLen += 1 + wordLen
		case wordLen > width:
			if lineLen > 0 {
				lines = append(lines, line)
			}
			chunks := chunk(word, width)
			lines = append(lines, chunks[:len(chunks)-1]...)
			line = chunks[len(chunks)-1]
			lineLen = utf8.RuneCountInString(line)
		default:
			lines = append(lines, line)
			line, lineLen = word, wordLen
		}
	}
	return append(lines, line)
}

func chunk(word string, width int) []string {
	runes := []rune(word)
	var out []string
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	return append(out, string(runes))
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// Mentions renders assignees space-joined: roles by name, users as mentions.
func Mentions(assignees []models.Assignee) string {
	parts := make([]string, 0, len(assignees))
	for _, a := range assignees {
		parts = append(parts, a.Mention())
	}
	return strings.Join(parts, " ")
}

// Reminder is the message a running notification posts for an undone task.
func Reminder(task *models.Task) string {
	var b strings.Builder
	b.WriteString("# TASK ")
	b.WriteString(task.Title)
	b.WriteString(" is not done\n## finish this task")
	if task.EndDate != nil {
		b.WriteString(" before ")
		b.WriteString(models.FormatDate(task.EndDate))
	}
	b.WriteString("\n")
	b.WriteString(task.Description)
	b.WriteString("\n")
	b.WriteString(Mentions(task.Assignees))
	return b.String()
}
