package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// form はラベル付きテキスト入力の集まりです。
type form struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

type field struct {
	label       string
	placeholder string
	value       string
	secret      bool
}

func newForm(fields ...field) form {
	f := form{}
	for i, fd := range fields {
		in := textinput.New()
		in.Placeholder = fd.placeholder
		in.CharLimit = 256
		in.Width = 40
		in.SetValue(fd.value)
		if fd.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '*'
		}
		if i == 0 {
			in.Focus()
		}
		f.labels = append(f.labels, fd.label)
		f.inputs = append(f.inputs, in)
	}
	return f
}

func (f *form) setFocus(i int) {
	f.inputs[f.focus].Blur()
	f.focus = (i + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *form) next() { f.setFocus(f.focus + 1) }
func (f *form) prev() { f.setFocus(f.focus - 1) }

func (f form) value(i int) string { return strings.TrimSpace(f.inputs[i].Value()) }

// raw はトリムしない値を返します（パスワード用）。
func (f form) raw(i int) string { return f.inputs[i].Value() }

func (f form) update(msg tea.Msg) (form, tea.Cmd) {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return f, cmd
}

func (f form) view() string {
	var b strings.Builder
	for i, in := range f.inputs {
		label := f.labels[i]
		if i == f.focus {
			label = cursorStyle.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n  ")
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	return b.String()
}
