package server

import (
	"bytes"
	"log"
	"testing"

	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"

	"github.com/lexcodex/sslsense/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	s, err := NewServer(config.Default(), nil, log.New(&bytes.Buffer{}, "", 0))
	require.NoError(t, err)
	s.rootPath = t.TempDir()
	return s
}

func TestReloadFileFeedsSelfTier(t *testing.T) {
	s := newTestServer(t)
	s.ReloadFile("door.ssl", "fallout-ssl", "#define DOOR_OPEN 1\n")

	payload, ok := s.GetHover("fallout-ssl", "door.ssl", "DOOR_OPEN")
	require.True(t, ok)
	require.Equal(t, "1", payload)

	// Self entries stay private to their file.
	_, ok = s.GetHover("fallout-ssl", "other.ssl", "DOOR_OPEN")
	require.False(t, ok)
}

func TestReloadFileHeaderFeedsDynamicTier(t *testing.T) {
	s := newTestServer(t)
	s.ReloadFile("define.h", "fallout-ssl", "#define MAX_HP 100\n")

	// Header symbols are visible from every file of the language.
	payload, ok := s.GetHover("fallout-ssl", "door.ssl", "MAX_HP")
	require.True(t, ok)
	require.Equal(t, "100", payload)

	// But not from the other language.
	_, ok = s.GetHover("weidu-tp2", "setup.tp2", "MAX_HP")
	require.False(t, ok)
}

func TestReloadFileReplacesOwnEntriesOnly(t *testing.T) {
	s := newTestServer(t)
	s.ReloadFile("a.h", "fallout-ssl", "#define FROM_A 1\n")
	s.ReloadFile("b.h", "fallout-ssl", "#define FROM_B 2\n")

	s.ReloadFile("a.h", "fallout-ssl", "#define FROM_A 9\n")

	payload, ok := s.GetHover("fallout-ssl", "c.ssl", "FROM_A")
	require.True(t, ok)
	require.Equal(t, "9", payload)
	payload, ok = s.GetHover("fallout-ssl", "c.ssl", "FROM_B")
	require.True(t, ok)
	require.Equal(t, "2", payload)
}

func TestSelfShadowsHeaderDefinition(t *testing.T) {
	s := newTestServer(t)
	s.ReloadFile("define.h", "fallout-ssl", "#define TIMEOUT 30\n")
	s.ReloadFile("door.ssl", "fallout-ssl", "#define TIMEOUT 5\n")

	payload, ok := s.GetHover("fallout-ssl", "door.ssl", "TIMEOUT")
	require.True(t, ok)
	require.Equal(t, "5", payload, "a local redefinition wins over the header's")

	payload, ok = s.GetHover("fallout-ssl", "other.ssl", "TIMEOUT")
	require.True(t, ok)
	require.Equal(t, "30", payload)
}

func TestGetCompletionsOrderAndKinds(t *testing.T) {
	s := newTestServer(t)
	s.ReloadFile("define.h", "fallout-ssl", "procedure shared begin\nend\n")
	s.ReloadFile("door.ssl", "fallout-ssl", "#define LOCAL_FLAG 1\n")

	items := s.GetCompletions("fallout-ssl", "door.ssl")
	require.Len(t, items, 2)
	require.Equal(t, "LOCAL_FLAG", items[0].Label, "self entries come first")
	require.Equal(t, protocol.CompletionItemKindConstant, items[0].Kind)
	require.Equal(t, "shared", items[1].Label)
	require.Equal(t, protocol.CompletionItemKindFunction, items[1].Kind)
}

func TestGetCompletionsRespectsMaxItems(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Completion.MaxItems = 1
	s.ReloadFile("door.ssl", "fallout-ssl", "#define A 1\n#define B 2\n")

	items := s.GetCompletions("fallout-ssl", "door.ssl")
	require.Len(t, items, 1)
	require.Equal(t, "A", items[0].Label)
}

func TestParseDiagnosticsUsesDocumentText(t *testing.T) {
	s := newTestServer(t)
	s.docs["door.ssl"] = &Document{
		RelPath:    "door.ssl",
		LanguageID: "fallout-ssl",
		Text:       "aaaa\nbbbbbbb\ncc\n",
	}

	stdout := "[Error] <Semantic> door.ssl:26:12: unknown identifier\n" +
		"[Warning] <Lexer> door.ssl:2:5: suspicious token\n"
	items := s.ParseDiagnostics("door.ssl", stdout)
	require.Len(t, items, 2)

	err := items[0]
	require.Equal(t, protocol.DiagnosticSeverityError, err.Severity)
	require.Equal(t, uint32(25), err.Range.Start.Line)
	require.Equal(t, uint32(0), err.Range.Start.Character)
	require.Equal(t, uint32(11), err.Range.End.Character)
	require.Equal(t, "unknown identifier", err.Message)

	warn := items[1]
	require.Equal(t, protocol.DiagnosticSeverityWarning, warn.Severity)
	require.Equal(t, uint32(1), warn.Range.Start.Line)
	require.Equal(t, uint32(5), warn.Range.Start.Character)
	require.Equal(t, uint32(7), warn.Range.End.Character, "warnings extend to end of line")
}

func TestParseDiagnosticsUntrackedDocument(t *testing.T) {
	s := newTestServer(t)
	items := s.ParseDiagnostics("gone.ssl", "[Error] <Parser> gone.ssl:3:1: oops\n")
	require.Len(t, items, 1)
	require.Equal(t, uint32(2), items[0].Range.Start.Line)
}

func TestHasExtension(t *testing.T) {
	tests := []struct {
		path string
		exts []string
		want bool
	}{
		{"headers/define.h", []string{".h"}, true},
		{"headers/DEFINE.H", []string{".h"}, true},
		{"door.ssl", []string{".h"}, false},
		{"lib.tph", []string{".tph", ".tpa"}, true},
		{"noext", []string{".h"}, false},
	}
	for _, tt := range tests {
		if got := hasExtension(tt.path, tt.exts); got != tt.want {
			t.Errorf("hasExtension(%q, %v) = %v, want %v", tt.path, tt.exts, got, tt.want)
		}
	}
}

func TestRelPath(t *testing.T) {
	s := newTestServer(t)
	s.rootPath = "/ws"

	require.Equal(t, "sub/a.ssl", s.relPath(protocol.DocumentURI("file:///ws/sub/a.ssl")))
	require.Equal(t, "/elsewhere/b.ssl", s.relPath(protocol.DocumentURI("file:///elsewhere/b.ssl")))

	s.rootPath = ""
	require.Equal(t, "/ws/sub/a.ssl", s.relPath(protocol.DocumentURI("file:///ws/sub/a.ssl")))
}
