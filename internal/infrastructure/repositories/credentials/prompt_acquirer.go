package credentials

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/browser"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/rios0rios0/runref/internal/domain/entities"
)

// ErrNotInteractive is returned when prompting is disabled or stdin is not a terminal.
var ErrNotInteractive = errors.New("interactive credential prompt unavailable")

// PromptAcquirer asks the user for a token on the terminal, opening the
// host's token page in a browser first.
type PromptAcquirer struct {
	interactive bool
	in          *os.File
	out         io.Writer
	openURL     func(url string) error
}

// NewPromptAcquirer creates a PromptAcquirer reading from stdin and writing to stderr.
func NewPromptAcquirer(settings *entities.Settings) *PromptAcquirer {
	return &PromptAcquirer{
		interactive: settings.Interactive,
		in:          os.Stdin,
		out:         os.Stderr,
		openURL:     browser.OpenURL,
	}
}

// Acquire implements repositories.CredentialAcquirer.
func (p *PromptAcquirer) Acquire(ctx context.Context, request entities.CredentialRequest) (*entities.Credential, error) {
	if !p.interactive || p.in == nil {
		return nil, ErrNotInteractive
	}
	fd := int(p.in.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return nil, ErrNotInteractive
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target := request.Protocol + "://" + request.Host
	if request.Path != "" {
		target += "/" + request.Path
	}

	if page := TokenPage(request); page != "" {
		_, _ = fmt.Fprintf(p.out, "A token is required for %s. Create one at %s\n", target, page)
		if err := p.openURL(page); err != nil {
			logger.Debugf("Could not open browser: %v", err)
		}
	}

	account := request.Account
	if account == "" {
		_, _ = fmt.Fprintf(p.out, "Username for %s: ", target)
		line, err := readLine(p.in)
		if err != nil {
			return nil, fmt.Errorf("failed to read username: %w", err)
		}
		account = strings.TrimSpace(line)
		if account == "" {
			return nil, errors.New("no username entered")
		}
	}

	_, _ = fmt.Fprintf(p.out, "Token for %s: ", target)
	secret, err := term.ReadPassword(fd)
	_, _ = fmt.Fprintln(p.out)
	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}
	token := strings.TrimSpace(string(secret))
	if token == "" {
		return nil, errors.New("no token entered")
	}

	return &entities.Credential{Account: account, Secret: token}, nil
}

// readLine reads one byte at a time up to '\n', so input typed ahead for the
// token prompt stays unread on the terminal.
func readLine(r io.Reader) (string, error) {
	var line []byte
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return string(line), nil
			}
			line = append(line, buf[0])
		}
		if errors.Is(err, io.EOF) {
			return string(line), nil
		}
		if err != nil {
			return string(line), err
		}
	}
}

// TokenPage returns the page where a token for the requested host can be created.
func TokenPage(request entities.CredentialRequest) string {
	switch strings.ToLower(request.Host) {
	case hostGitHub, hostGist:
		return "https://github.com/settings/tokens/new?scopes=repo,gist&description=runref"
	case hostGitLab:
		return "https://gitlab.com/-/user_settings/personal_access_tokens?name=runref&scopes=read_api,read_repository"
	case hostBitbucket:
		return "https://bitbucket.org/account/settings/app-passwords/new"
	case hostAzureDevOps:
		organization, _, _ := strings.Cut(request.Path, "/")
		if organization == "" {
			return ""
		}
		return "https://dev.azure.com/" + organization + "/_usersSettings/tokens"
	default:
		return ""
	}
}
