package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"portfolio-api/config"
	"portfolio-api/internal/audio"
	"portfolio-api/internal/cache"
	"portfolio-api/internal/chat"
	"portfolio-api/internal/database"
	"portfolio-api/internal/profile"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const defaultPlayerCommand = "aplay -q -f S16_LE -r 24000 -c 1"

var newDeviceHook = func(command string) audio.Device {
	return audio.NewCommandDevice(command)
}

type askOptions struct {
	speak   bool
	player  string
	content string
}

func newAskCmd() *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the assistant a question",
		Long: `Streams the assistant's answer to stdout. Without a message, reads one
question per line from stdin and keeps the conversation going until EOF or "exit".`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd, opts, args)
		},
	}
	cmd.Flags().BoolVar(&opts.speak, "speak", false, "Play the spoken answer")
	cmd.Flags().StringVar(&opts.player, "player", defaultPlayerCommand, "Command that plays raw PCM from stdin")
	cmd.Flags().StringVar(&opts.content, "content", "", "Portfolio content file (default: CONTENT_FILE)")
	return cmd
}

func runAsk(cmd *cobra.Command, opts *askOptions, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := loadConfigHook()

	text, speech, err := newProvidersHook(ctx, cfg)
	if err != nil {
		return err
	}

	content := opts.content
	if content == "" {
		content = cfg.ContentFile
	}
	snapshot, err := loadProfile(content)
	if err != nil {
		log.Printf("portfolio content unavailable: %v", err)
	}

	c := &chat.Coordinator{
		Text:          text,
		Speech:        speech,
		Cache:         cache.NewResponseCache(cache.NewMemoryStore()),
		HistoryWindow: cfg.HistoryWindow,
		TextTimeout:   cfg.TextTimeout,
		AudioTimeout:  cfg.AudioTimeout,
	}
	if snapshot != nil {
		c.Profile = snapshot
	}

	var sp *speaker
	if opts.speak {
		sp = newSpeaker(opts.player)
		if err := sp.player.Unlock(); err != nil {
			return err
		}
	}

	session := uuid.NewString()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		_, err := askOnce(ctx, out, c, sp, session, args[0], nil)
		return err
	}

	var history []chat.ChatMessage
	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		turn, err := askOnce(ctx, out, c, sp, session, line, history)
		if err != nil {
			return err
		}
		history = append(history, chat.ChatMessage{Role: chat.RoleUser, Content: line})
		if !turn.Fallback {
			history = append(history, chat.ChatMessage{Role: chat.RoleAssistant, Content: turn.Text})
		}
	}
}

func askOnce(ctx context.Context, out io.Writer, c *chat.Coordinator, sp *speaker, session, message string, history []chat.ChatMessage) (*chat.Turn, error) {
	turn, err := c.Send(ctx, session, message, history, func(chunk string) {
		fmt.Fprint(out, chunk)
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(out)

	if sp != nil {
		clip, ok, err := turn.Audio(ctx)
		if err == nil && ok {
			if err := sp.say(ctx, clip); err != nil {
				log.Printf("playback failed: %v", err)
			}
		}
	}
	c.Wait()
	return turn, nil
}

// loadProfile seeds the content file into a private in-memory database.
func loadProfile(path string) (*profile.ProfileService, error) {
	db, err := database.Open(config.Config{
		DBDriver: "sqlite",
		DBPath:   "file:portfolioctl_" + uuid.NewString() + "?mode=memory&cache=shared",
	})
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	ps := &profile.ProfileService{DB: db}
	if _, err := ps.Reload(path); err != nil {
		return nil, err
	}
	return ps, nil
}

type speaker struct {
	player *audio.Player

	mu    sync.Mutex
	ended chan struct{}
}

func newSpeaker(command string) *speaker {
	s := &speaker{}
	s.player = audio.NewPlayer(func() (audio.Device, error) {
		return newDeviceHook(command), nil
	})
	s.player.OnSpeakingChange = func(speaking bool) {
		if !speaking {
			s.finish(nil)
		}
	}
	return s
}

// finish closes the pending clip's channel. When only is set, nothing
// happens unless the pending channel is that one.
func (s *speaker) finish(only chan struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended == nil || (only != nil && s.ended != only) {
		return
	}
	close(s.ended)
	s.ended = nil
}

// say plays one clip and blocks until the device reports it finished.
func (s *speaker) say(ctx context.Context, clip string) error {
	ended := make(chan struct{})
	s.mu.Lock()
	s.ended = ended
	s.mu.Unlock()

	if err := s.player.Play(ctx, clip); err != nil {
		s.finish(ended)
		return err
	}
	select {
	case <-ended:
	case <-ctx.Done():
		s.finish(ended)
		return ctx.Err()
	}
	return nil
}
