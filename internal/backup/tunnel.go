package backup

import (
	"fmt"
	"io"
	"net"
	"os"
	"sync"

	"golang.org/x/crypto/ssh"

	"github.com/ecavus/wedding-rsvp/pkg/config"
	"github.com/ecavus/wedding-rsvp/pkg/logger"
)

// Tunnel forwards a local listener to the remote database host through SSH,
// the way the production box is reached from outside.
type Tunnel struct {
	client   *ssh.Client
	listener net.Listener
	remote   string

	closeOnce sync.Once
}

// OpenTunnel dials the SSH host and starts forwarding. The returned tunnel's
// Addr is a loopback address a database client can connect to.
func OpenTunnel(cfg config.BackupConfig) (*Tunnel, error) {
	key, err := os.ReadFile(cfg.SSHKeyPath)
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}

	sshAddr := fmt.Sprintf("%s:%d", cfg.SSHHost, cfg.SSHPort)
	client, err := ssh.Dial("tcp", sshAddr, &ssh.ClientConfig{
		User:            cfg.SSHUser,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	})
	if err != nil {
		return nil, fmt.Errorf("ssh dial %s: %w", sshAddr, err)
	}

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("local listen: %w", err)
	}

	t := &Tunnel{
		client:   client,
		listener: listener,
		remote:   fmt.Sprintf("%s:%d", cfg.RemoteHost, cfg.RemotePort),
	}
	go t.accept()

	logger.Info("SSH tunnel established", "local", t.Addr(), "remote", t.remote)
	return t, nil
}

// Addr is the local forwarding address.
func (t *Tunnel) Addr() string {
	return t.listener.Addr().String()
}

func (t *Tunnel) accept() {
	for {
		local, err := t.listener.Accept()
		if err != nil {
			return
		}
		go t.forward(local)
	}
}

func (t *Tunnel) forward(local net.Conn) {
	defer local.Close()

	remote, err := t.client.Dial("tcp", t.remote)
	if err != nil {
		logger.Error("Tunnel dial failed", "remote", t.remote, "error", err)
		return
	}
	defer remote.Close()

	done := make(chan struct{}, 2)
	go func() {
		io.Copy(remote, local)
		done <- struct{}{}
	}()
	go func() {
		io.Copy(local, remote)
		done <- struct{}{}
	}()
	<-done
}

func (t *Tunnel) Close() {
	t.closeOnce.Do(func() {
		t.listener.Close()
		t.client.Close()
	})
}
