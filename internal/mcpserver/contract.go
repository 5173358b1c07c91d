package mcpserver

// NoteFormatURI is the resource URI of the note format contract.
const NoteFormatURI = "notes://note-format"

// NoteFormatContract describes the Markdown note format accepted by the
// create_note tool and produced by read_note.
const NoteFormatContract = `# Note Format Contract

A note is a Markdown document with optional YAML frontmatter.

## Structure

` + "```" + `markdown
---
title: Groceries          # OPTIONAL – falls back to the first "# " heading
kind: list                # OPTIONAL – text | list, guessed from the body
status: active            # OPTIONAL – active | archived | deleted (default active)
pinned: true              # OPTIONAL
labels:                   # OPTIONAL – created when missing
  - home
reminder:                 # OPTIONAL
  start: 2025-01-20T09:00:00Z
  next: 2025-01-20T09:00:00Z
  recurrence: FREQ=WEEKLY;BYDAY=MO
---
- [ ] milk
- [x] eggs
` + "```" + `

## Rules

1. **Frontmatter** is fenced by ` + "`" + `---` + "`" + ` lines and must come first. Invalid YAML is rejected.
2. **Kind.** Without ` + "`" + `kind` + "`" + `, a body made only of checkbox lines
   (` + "`" + `- [ ] item` + "`" + ` / ` + "`" + `- [x] item` + "`" + `) is a list note; anything else is a text note.
3. **List notes** carry no free text, only checkbox lines. Text notes carry no checkbox items.
4. **Labels** come from ` + "`" + `labels` + "`" + `, ` + "`" + `tags` + "`" + ` and inline ` + "`" + `#hashtags` + "`" + ` in text notes.
5. **Reminders** use RFC 5545 RRULE syntax for ` + "`" + `recurrence` + "`" + `; omit it for a one-time reminder.
6. **Deleted** notes cannot be pinned.
`
