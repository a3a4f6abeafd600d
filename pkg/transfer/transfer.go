// Package transfer copies the plugin archive to a provisioning target
// over SSH. The copy is purely mechanical: stream the file, nothing
// else, and any failure aborts the run.
package transfer

import (
	"context"
	"fmt"
	"net"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/arthur-debert/devup/pkg/errors"
	"github.com/arthur-debert/devup/pkg/logging"
)

// Copier copies a local file to a remote path
type Copier interface {
	Copy(ctx context.Context, localPath, remotePath string) error
}

// SSHCopier copies files over an SSH connection
type SSHCopier struct {
	User string
	Host string
	Port int

	// KeyPath optionally points at a specific private key; when empty
	// the agent and the default key files are tried
	KeyPath string

	// Home locates ~/.ssh for keys and known_hosts
	Home string
}

// NewSSHCopier creates a copier for user@host
func NewSSHCopier(user, host, home string) *SSHCopier {
	return &SSHCopier{User: user, Host: host, Port: 22, Home: home}
}

// Copy streams localPath to remotePath on the target host, creating the
// remote parent directory first
func (c *SSHCopier) Copy(ctx context.Context, localPath, remotePath string) error {
	logger := logging.GetLogger("transfer")

	client, err := c.dial()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	remoteDir := path.Dir(remotePath)
	if err := c.runRemote(client, fmt.Sprintf("mkdir -p %q", remoteDir)); err != nil {
		return errors.Wrapf(err, errors.ErrTransferCopy, "failed to create remote directory %s", remoteDir)
	}

	f, err := os.Open(localPath)
	if err != nil {
		return errors.Wrapf(err, errors.ErrTransferCopy, "failed to open %s", localPath)
	}
	defer func() { _ = f.Close() }()

	session, err := client.NewSession()
	if err != nil {
		return errors.Wrap(err, errors.ErrTransferCopy, "failed to open SSH session")
	}
	defer func() { _ = session.Close() }()

	session.Stdin = f
	if err := session.Run(fmt.Sprintf("cat > %q", remotePath)); err != nil {
		return errors.Wrapf(err, errors.ErrTransferCopy, "failed to stream %s to %s", localPath, remotePath)
	}

	logger.Info().
		Str("local", localPath).
		Str("remote", fmt.Sprintf("%s@%s:%s", c.User, c.Host, remotePath)).
		Msg("Archive transferred")
	return nil
}

func (c *SSHCopier) dial() (*ssh.Client, error) {
	hostKeys, err := knownhosts.New(filepath.Join(c.Home, ".ssh", "known_hosts"))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrTransferDial, "failed to load known_hosts")
	}

	config := &ssh.ClientConfig{
		User:            c.User,
		Auth:            c.authMethods(),
		HostKeyCallback: hostKeys,
	}

	addr := net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
	client, err := ssh.Dial("tcp", addr, config)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrTransferDial, "failed to connect to %s", addr)
	}
	return client, nil
}

// authMethods assembles SSH auth in preference order: explicit key, the
// running agent, then the conventional key files
func (c *SSHCopier) authMethods() []ssh.AuthMethod {
	logger := logging.GetLogger("transfer")
	var methods []ssh.AuthMethod

	keyPaths := []string{c.KeyPath}
	if c.KeyPath == "" {
		keyPaths = []string{
			filepath.Join(c.Home, ".ssh", "id_ed25519"),
			filepath.Join(c.Home, ".ssh", "id_rsa"),
		}
	}

	if sock := os.Getenv("SSH_AUTH_SOCK"); sock != "" {
		if conn, err := net.Dial("unix", sock); err == nil {
			methods = append(methods, ssh.PublicKeysCallback(agent.NewClient(conn).Signers))
		}
	}

	for _, keyPath := range keyPaths {
		data, err := os.ReadFile(keyPath)
		if err != nil {
			continue
		}
		signer, err := ssh.ParsePrivateKey(data)
		if err != nil {
			logger.Warn().Str("key", keyPath).Err(err).Msg("Skipping unparsable private key")
			continue
		}
		methods = append(methods, ssh.PublicKeys(signer))
	}

	return methods
}

func (c *SSHCopier) runRemote(client *ssh.Client, command string) error {
	session, err := client.NewSession()
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()
	return session.Run(command)
}
