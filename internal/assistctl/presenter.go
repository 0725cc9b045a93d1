package assistctl

import (
	"fmt"
	"io"
	"sync"

	"ai-topic-assist-be/pkg/topicassist"

	"github.com/fatih/color"
)

// console serializes writes from the prompt loop and the controller's
// background resolution.
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func (c *console) printf(attr *color.Color, format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if attr == nil {
		fmt.Fprintf(c.out, format, args...)
		return
	}
	attr.Fprintf(c.out, format, args...)
}

var (
	panelStyle = color.New(color.FgCyan, color.Bold)
	titleStyle = color.New(color.FgGreen, color.Bold)
	hintStyle  = color.New(color.FgHiBlack)
	errStyle   = color.New(color.FgRed)
	okStyle    = color.New(color.FgGreen)
)

// panelPresenter draws the floating suggestion as a boxed block in the terminal.
type panelPresenter struct {
	console *console
}

var _ topicassist.Presenter = panelPresenter{}

func (p panelPresenter) Show(s topicassist.FloatingSuggestion) {
	p.console.printf(panelStyle, "\n┌ Topic suggestion (from message %d)\n", s.Anchor)
	p.console.printf(nil, "│ current:   %s\n", s.CurrentTopic)
	p.console.printf(titleStyle, "│ suggested: %s\n", s.SuggestedTitle)
	p.console.printf(hintStyle, "└ /apply [title]  /dismiss  /close\n")
}

func (p panelPresenter) Hide() {
	p.console.printf(hintStyle, "(suggestion closed)\n")
}
