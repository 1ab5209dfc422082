package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/rocketscienceinc/globetrotter/internal/apperror"
	"github.com/rocketscienceinc/globetrotter/internal/entity"
)

const (
	InviterParam = "inviter"

	whatsAppURL = "https://wa.me/"
)

type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelClipboard Channel = "clipboard"
	ChannelImage     Channel = "image"
)

var (
	ErrUnknownChannel = errors.New("unknown share channel")
	ErrNoShareImage   = errors.New("no share image has been generated")
)

// ChallengeTracker - fires once per session, on the guess whose score first passes the inviter's.
type ChallengeTracker struct {
	mu    sync.Mutex
	fired bool
}

// Observe - reports whether newScore is the score that just beat the inviter.
// Assumes a correct guess is worth exactly one point.
func (that *ChallengeTracker) Observe(inviter *entity.InviterContext, newScore int) bool {
	if inviter == nil {
		return false
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.fired {
		return false
	}

	if newScore > inviter.Score && newScore-1 <= inviter.Score {
		that.fired = true
		return true
	}

	return false
}

func (that *ChallengeTracker) Fired() bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.fired
}

// Challenge - what a player shares to invite someone to beat their score.
type Challenge struct {
	Username      string
	URL           string
	Score         int
	TotalAttempts int
	Accuracy      int
}

// NewChallenge - builds the invite link <base>/?inviter=<username> for a logged-in session.
func NewChallenge(shareBaseURL string, session entity.PlayerSession) (*Challenge, error) {
	if !session.IsLoggedIn() {
		return nil, apperror.ErrNotLoggedIn
	}

	base, err := url.Parse(shareBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid share base url: %w", err)
	}

	base.Path = strings.TrimSuffix(base.Path, "/") + "/"
	base.RawQuery = url.Values{InviterParam: {session.Username}}.Encode()
	base.Fragment = ""

	return &Challenge{
		Username:      session.Username,
		URL:           base.String(),
		Score:         session.Score,
		TotalAttempts: session.TotalAttempts,
		Accuracy:      session.Accuracy(),
	}, nil
}

// Summary - "3/4 (75% accuracy)".
func (that *Challenge) Summary() string {
	return fmt.Sprintf("%d/%d (%d%% accuracy)", that.Score, that.TotalAttempts, that.Accuracy)
}

func (that *Challenge) ShareText() string {
	return fmt.Sprintf("Play Globetrotter Challenge with me! I've scored %s. Can you beat me? Join here: %s",
		that.Summary(), that.URL)
}

func (that *Challenge) WhatsAppURL() string {
	return whatsAppURL + "?text=" + url.QueryEscape(that.ShareText())
}

func (that *Challenge) ImageName() string {
	return "globetrotter-challenge-" + that.Username + ".png"
}

func (that *Challenge) cardKey() string {
	return that.Username + " " + that.Summary()
}

// CardLines - the text printed on the share image.
func (that *Challenge) CardLines() []string {
	return []string{
		"Globetrotter Challenge",
		that.Username + " has challenged you to beat their score!",
		"Score: " + that.Summary(),
		"Can you guess more destinations correctly?",
	}
}

// ParseInviter - accepts a bare username or an invite link carrying ?inviter=.
func ParseInviter(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	if !strings.Contains(raw, "?") && !strings.Contains(raw, "://") {
		return raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	return strings.TrimSpace(u.Query().Get(InviterParam))
}

type imageRenderer interface {
	Save(name, link string, lines []string) (string, error)
}

type linkCopier interface {
	Copy(text string) error
}

type sessionReader interface {
	Session() entity.PlayerSession
}

// Sharer - the challenge surface: open it, regenerate the image, pick a channel.
// Image and clipboard failures never touch game state.
type Sharer struct {
	logger   *slog.Logger
	baseURL  string
	session  sessionReader
	renderer imageRenderer
	copier   linkCopier

	mu        sync.Mutex
	imagePath string
	imageFor  string
}

func NewSharer(logger *slog.Logger, baseURL string, session sessionReader, renderer imageRenderer, copier linkCopier) *Sharer {
	return &Sharer{
		logger:   logger.With("component", "share"),
		baseURL:  baseURL,
		session:  session,
		renderer: renderer,
		copier:   copier,
	}
}

// Open - builds the current challenge and renders its image if there is none yet.
// A rendering failure is logged and leaves the image empty.
func (that *Sharer) Open(_ context.Context) (*Challenge, string, error) {
	challenge, err := NewChallenge(that.baseURL, that.session.Session())
	if err != nil {
		return nil, "", err
	}

	that.mu.Lock()
	path := that.imagePath
	stale := that.imageFor != challenge.cardKey()
	that.mu.Unlock()

	if path != "" && !stale {
		return challenge, path, nil
	}

	path, err = that.render(challenge)
	if err != nil {
		that.logger.Error("failed to generate share image", "error", err)
		return challenge, "", nil
	}

	return challenge, path, nil
}

// Regenerate - renders the image again from the current session.
func (that *Sharer) Regenerate(_ context.Context) (string, error) {
	challenge, err := NewChallenge(that.baseURL, that.session.Session())
	if err != nil {
		return "", err
	}

	return that.render(challenge)
}

// Share - hands the challenge to a channel and returns what the player needs next
// (a link to open, the copied link or the image path).
func (that *Sharer) Share(ctx context.Context, channel Channel) (string, error) {
	challenge, err := NewChallenge(that.baseURL, that.session.Session())
	if err != nil {
		return "", err
	}

	switch channel {
	case ChannelWhatsApp:
		return challenge.WhatsAppURL(), nil
	case ChannelClipboard:
		if err = that.copier.Copy(challenge.URL); err != nil {
			that.logger.Error("failed to copy challenge link", "error", err)
			return "", fmt.Errorf("failed to copy challenge link: %w", err)
		}

		return challenge.URL, nil
	case ChannelImage:
		_, path, err := that.Open(ctx)
		if err != nil {
			return "", err
		}

		if path == "" {
			return "", ErrNoShareImage
		}

		return path, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownChannel, channel)
	}
}

func (that *Sharer) render(challenge *Challenge) (string, error) {
	path, err := that.renderer.Save(challenge.ImageName(), challenge.URL, challenge.CardLines())
	if err != nil {
		return "", fmt.Errorf("failed to render share image: %w", err)
	}

	that.mu.Lock()
	that.imagePath = path
	that.imageFor = challenge.cardKey()
	that.mu.Unlock()

	that.logger.Info("share image generated", "path", path)

	return path, nil
}
