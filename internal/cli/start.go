package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"classpoll-client/internal/api"
	"classpoll-client/internal/client"
	"classpoll-client/internal/domain"
	"classpoll-client/internal/session"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand that joins a live poll session.
func NewStartCmd(configPath, serverURL *string) *cobra.Command {
	var (
		name string
		role string
	)
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Connect to the poll session and stream updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), *configPath, *serverURL, name, role)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name (students)")
	cmd.Flags().StringVar(&role, "role", "student", "signup role: teacher or student")
	return cmd
}

func runStart(ctx context.Context, cfgPath, base, name, role string) error {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	baseURL := resolveBase(cfg, base)
	wsURL, err := wsEndpoint(baseURL, cfg.Server.WSPath)
	if err != nil {
		return err
	}

	profile := name
	if profile == "" {
		profile = cfg.Client.Name
	}
	if profile == "" {
		profile = "default"
	}
	if role == "" {
		role = cfg.Client.Role
	}

	registry := buildRegistry(cfg)
	tabID, err := registry.GetOrCreate(ctx, profile)
	if err != nil {
		return err
	}

	apiClient := api.NewClient(baseURL)
	mgr := client.NewManager(wsURL, apiClient)
	mgr.OnSnapshotError(func(err error) {
		log.Printf("failed to fetch poll data: %v", err)
	})

	updates, cancel := mgr.Subscribe()
	defer cancel()

	if err := mgr.Dispatch(ctx, client.Connect{TabID: tabID}); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer mgr.Disconnect()
	log.Printf("connected to %s as tab %s", wsURL, tabID)

	// Same gate as the signup page: teacher signup is only offered while
	// no other teacher holds the session.
	online, err := apiClient.TeacherOnline(ctx)
	if err != nil {
		log.Printf("failed to fetch teacher status: %v", err)
	} else {
		_ = mgr.Dispatch(ctx, client.SetTeacherStatus{Online: online})
	}

	switch role {
	case "teacher":
		if online && mgr.State().Role != domain.RoleTeacher {
			return fmt.Errorf("a teacher is already online")
		}
		_ = mgr.Dispatch(ctx, client.TeacherSignup{})
	default:
		_ = mgr.Dispatch(ctx, client.StudentSignup{})
		if name != "" {
			_ = mgr.Dispatch(ctx, client.SaveStudentName{Name: name})
		}
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	var prev session.State
	for {
		select {
		case st := <-updates:
			logTransitions(prev, st)
			if st.Kicked {
				log.Printf("removed from session by the teacher")
				return nil
			}
			prev = st
		case <-stop:
			log.Printf("disconnecting...")
			return nil
		case <-ctx.Done():
			return nil
		}
	}
}

// logTransitions prints what changed between two state values, the
// terminal stand-in for views re-rendering from the latest state.
func logTransitions(prev, next session.State) {
	if prev.Connected != next.Connected {
		if next.Connected {
			log.Printf("channel up (tab %s)", next.TabID)
		} else {
			log.Printf("channel down; waiting for reconnect")
		}
	}
	if prev.Role != next.Role || prev.UserID != next.UserID {
		log.Printf("identity: %s (%s)", next.UserID, next.Role)
	}
	if prev.TeacherOnline != next.TeacherOnline {
		log.Printf("teacher online: %v", next.TeacherOnline)
	}

	switch {
	case next.Question == nil && prev.Question != nil:
		log.Printf("poll cleared; waiting for teacher to ask question")
	case next.Question != nil && (prev.Question == nil || prev.Question.ID != next.Question.ID):
		log.Printf("question %s: %s (%d options, %ds window)",
			next.Question.ID, next.Question.Text, len(next.Question.Options), next.Question.MaxDurationSeconds)
	}

	if next.Answer != nil && (prev.Answer == nil || prev.Answer.OptionID != next.Answer.OptionID) {
		log.Printf("answer recorded: option %s (%s)", next.Answer.OptionID, next.AnswerProvenance)
	}
	if prev.PollCount != next.PollCount {
		log.Printf("submissions: %d", next.PollCount)
	}
	if len(next.Presence) != len(prev.Presence) {
		log.Printf("online: %d participants", len(next.Presence))
	}
	for i := len(prev.Messages); i < len(next.Messages); i++ {
		msg := next.Messages[i]
		log.Printf("[chat] %s: %s", msg.Sender, msg.Text)
	}
}
