package assistctl

import (
	"bufio"
	"context"
	"io"
	"strings"

	"ai-topic-assist-be/internal/pkg/logger"
	"ai-topic-assist-be/pkg/assistclient"
	"ai-topic-assist-be/pkg/topicassist"
)

const (
	chatModule = "AssistCtl"

	// recapWindow caps how many of this session's sends /recap summarizes.
	recapWindow = 50
)

// ChatSession is one interactive compose session: lines are sent to the
// current topic and fed into a local assistant controller.
type ChatSession struct {
	client   *assistclient.Client
	ctrl     *topicassist.Controller
	console  *console
	logger   logger.ILogger
	streamId int64
	topic    string
	sent     []int64
}

func NewChatSession(client *assistclient.Client, settings topicassist.Settings, streamId int64, topic string, out io.Writer, log logger.ILogger) *ChatSession {
	con := &console{out: out}
	return &ChatSession{
		client:   client,
		ctrl:     topicassist.NewController(settings, client, client, panelPresenter{console: con}, log),
		console:  con,
		logger:   log,
		streamId: streamId,
		topic:    strings.TrimSpace(topic),
	}
}

// Run reads lines from in until EOF, /quit or ctx is done.
func (s *ChatSession) Run(ctx context.Context, in io.Reader) error {
	defer s.ctrl.Shutdown()

	s.console.printf(hintStyle, "Stream %d, topic %q. Type /help for commands.\n", s.streamId, s.topic)
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if quit := s.HandleLine(ctx, scanner.Text()); quit {
			return nil
		}
	}
	return scanner.Err()
}

// HandleLine executes one input line and reports whether the session should end.
func (s *ChatSession) HandleLine(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, "/") {
		s.send(ctx, line)
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/apply":
		s.apply(ctx, arg)
	case "/dismiss":
		if !s.ctrl.Dismiss() {
			s.console.printf(hintStyle, "No suggestion to dismiss.\n")
		}
	case "/close":
		if !s.ctrl.Close() {
			s.console.printf(hintStyle, "No suggestion to close.\n")
		}
	case "/topic":
		s.setTopic(arg)
	case "/recap":
		s.recap(ctx)
	case "/state":
		s.console.printf(nil, "state=%s pending=%d last=%q\n", s.ctrl.State(), s.ctrl.Pending(), s.ctrl.LastSuggested())
	case "/help":
		s.console.printf(hintStyle, "/apply [title]  /dismiss  /close  /topic <title>  /recap  /state  /quit\n")
	case "/quit", "/exit":
		return true
	default:
		s.console.printf(errStyle, "Unknown command %s, try /help\n", cmd)
	}
	return false
}

func (s *ChatSession) send(ctx context.Context, content string) {
	if s.topic == "" {
		s.console.printf(errStyle, "Set a topic first with /topic <title>\n")
		return
	}

	res, err := s.client.SendMessage(ctx, s.streamId, s.topic, content)
	if err != nil {
		s.logger.Warn(chatModule, "Send failed", map[string]interface{}{"error": err.Error()})
		s.console.printf(errStyle, "Send failed: %v\n", err)
		return
	}
	s.sent = append(s.sent, res.Id)
	s.ctrl.RecordSend(res.Topic, []int64{res.Id})
}

func (s *ChatSession) apply(ctx context.Context, title string) {
	current, ok := s.ctrl.Current()
	if !ok {
		s.console.printf(hintStyle, "No suggestion to apply.\n")
		return
	}
	if title == "" {
		title = current.SuggestedTitle
	}

	// A failed rename is in the diagnostic log and the panel stays open.
	if applied, _ := s.ctrl.Apply(ctx, title); applied {
		s.topic = strings.TrimSpace(title)
		s.console.printf(okStyle, "Topic renamed to %q from message %d on.\n", s.topic, current.Anchor)
	}
}

func (s *ChatSession) setTopic(topic string) {
	if topic == "" {
		s.console.printf(nil, "Current topic: %q\n", s.topic)
		return
	}
	s.topic = topic
	s.console.printf(hintStyle, "Topic set to %q\n", topic)
}

func (s *ChatSession) recap(ctx context.Context) {
	if len(s.sent) == 0 {
		s.console.printf(hintStyle, "Nothing sent yet.\n")
		return
	}
	ids := s.sent
	if len(ids) > recapWindow {
		ids = ids[len(ids)-recapWindow:]
	}

	res, err := s.client.Recap(ctx, ids)
	if err != nil {
		s.console.printf(errStyle, "Recap failed: %v\n", err)
		return
	}
	s.console.printf(panelStyle, "Recap\n")
	s.console.printf(nil, "%s\n", res.RecapHtml)
	for _, ref := range res.MessageRefs {
		s.console.printf(hintStyle, "  %s  %s\n", ref.Anchor, ref.Snippet)
	}
}

// Topic returns the topic new lines are sent to.
func (s *ChatSession) Topic() string {
	return s.topic
}

// Wait blocks until no suggestion request is outstanding.
func (s *ChatSession) Wait() {
	s.ctrl.Wait()
}
