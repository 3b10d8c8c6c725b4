package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"

	"github.com/widgetforge/calcapp/mcp"
)

// StdioServer carries the MCP protocol over newline-delimited JSON on
// stdin/stdout, for hosts that launch the app as a subprocess. One process,
// one session.
type StdioServer struct {
	server *MCPServer
	logger *log.Logger
}

// NewStdioServer wraps an MCPServer for stdio transport. Logging goes nowhere
// by default; stdout belongs to the protocol.
func NewStdioServer(server *MCPServer) *StdioServer {
	return &StdioServer{
		server: server,
		logger: log.New(io.Discard),
	}
}

// SetLogger configures where transport errors are logged.
func (s *StdioServer) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// Listen reads messages from stdin and writes responses to stdout until EOF
// or context cancellation.
func (s *StdioServer) Listen(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	reader := bufio.NewReader(stdin)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// The read itself is made cancellable by doing it in a goroutine.
		readChan := make(chan string, 1)
		errChan := make(chan error, 1)
		go func() {
			line, err := reader.ReadString('\n')
			if err != nil {
				errChan <- err
				return
			}
			readChan <- line
		}()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			if err == io.EOF {
				return nil
			}
			s.logger.Error("error reading input", "error", err)
			return err
		case line := <-readChan:
			if err := s.processMessage(ctx, line, stdout); err != nil {
				s.logger.Error("error handling message", "error", err)
				return err
			}
		}
	}
}

func (s *StdioServer) processMessage(ctx context.Context, line string, writer io.Writer) error {
	var rawMessage json.RawMessage
	if err := json.Unmarshal([]byte(line), &rawMessage); err != nil {
		return s.writeResponse(createErrorResponse(nil, mcp.PARSE_ERROR, "Parse error"), writer)
	}

	response := s.server.HandleMessage(ctx, rawMessage)
	if response == nil {
		// Notifications have no reply.
		return nil
	}
	return s.writeResponse(response, writer)
}

func (s *StdioServer) writeResponse(response mcp.JSONRPCMessage, writer io.Writer) error {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "%s\n", responseBytes); err != nil {
		return err
	}
	return nil
}

// ServeStdio runs a StdioServer on os.Stdin/os.Stdout until EOF or an
// interrupt.
func ServeStdio(server *MCPServer) error {
	s := NewStdioServer(server)
	s.SetLogger(log.New(os.Stderr))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := s.Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
