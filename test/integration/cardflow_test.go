//go:build integration

// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

// Package integration_test drives the daemon's full pipeline in process:
// a scripted card session feeds the monitor, the engine decodes the card,
// and the distributor broadcasts to a real WebSocket subscriber.
package integration_test

import (
	"bufio"
	"context"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"golang.org/x/net/websocket"
	"golang.org/x/text/encoding/charmap"

	"github.com/cardbridge-io/cardbridge/internal/audit"
	"github.com/cardbridge-io/cardbridge/internal/audit/export"
	"github.com/cardbridge-io/cardbridge/internal/card"
	"github.com/cardbridge-io/cardbridge/internal/config"
	"github.com/cardbridge-io/cardbridge/internal/fieldcrypt"
	"github.com/cardbridge-io/cardbridge/internal/stream"
	"github.com/cardbridge-io/cardbridge/internal/stream/metrics"
)

const (
	apiKey     = "integration-test-key"
	testReader = "Integration Reader 00 00"
)

// scriptedSession presents one reader whose card state follows the steps
// pushed by the test.
type scriptedSession struct {
	reader string
	card   card.Card
	steps  chan bool
}

func (s *scriptedSession) Healthy() bool { return true }

func (s *scriptedSession) ListReaders() ([]string, error) {
	return []string{s.reader}, nil
}

func (s *scriptedSession) WaitStatus(
	_ []string,
	timeout time.Duration,
) ([]card.ReaderStatus, error) {
	select {
	case present, ok := <-s.steps:
		if !ok {
			return nil, card.ErrWaitTimeout
		}

		return []card.ReaderStatus{{Reader: s.reader, Present: present}}, nil
	case <-time.After(timeout):
		return nil, card.ErrWaitTimeout
	}
}

func (s *scriptedSession) Connect(
	_ string,
) (card.Card, error) {
	return s.card, nil
}

func (s *scriptedSession) Close() error { return nil }

// scriptedCard answers every transmitted command from a static response
// table, so repeated read cycles replay identically.
type scriptedCard struct {
	responses map[string][]byte
}

func (c *scriptedCard) Transmit(
	cmd []byte,
) ([]byte, error) {
	resp, ok := c.responses[hex.EncodeToString(cmd)]
	if !ok {
		return nil, fmt.Errorf("unscripted command %s", hex.EncodeToString(cmd))
	}

	return resp, nil
}

func (c *scriptedCard) Close() error { return nil }

func win874(s string) []byte {
	b, err := charmap.Windows874.NewEncoder().Bytes([]byte(s))
	if err != nil {
		panic(err)
	}

	return b
}

// testCard scripts a complete, screening-clean card.
func testCard(commands *card.CommandSet) *scriptedCard {
	c := &scriptedCard{responses: make(map[string][]byte)}
	set := func(cmd []byte, payload []byte) {
		c.responses[hex.EncodeToString(cmd)] = append(
			append([]byte(nil), payload...), 0x90, 0x00,
		)
	}

	set(commands.Select, nil)
	set(commands.Fields[card.FieldCitizenID], []byte("1101700203344"))
	set(commands.Fields[card.FieldBirthDate], []byte("19900115"))
	set(commands.Fields[card.FieldGender], []byte("1"))
	set(commands.Fields[card.FieldIssuer], win874("กรมการปกครอง"))
	set(commands.Fields[card.FieldIssueDate], []byte("20150301"))
	set(commands.Fields[card.FieldExpireDate], []byte("20250228"))
	set(commands.Fields[card.FieldThaiName], win874("นาย#สมชาย##ใจดี"))
	set(commands.Fields[card.FieldEnglishName], []byte("Mr.#Somchai##Jaidee"))
	set(
		commands.Fields[card.FieldAddress],
		win874("99/1#หมู่ 5##ถนนสุขุมวิท#บางนา#บางนา#กรุงเทพมหานคร"),
	)
	set(commands.Photo[0], []byte{0xFF, 0xD8})
	set(commands.Photo[1], []byte{0x11, 0x22})

	return c
}

type CardFlowSuite struct {
	suite.Suite

	logger    *slog.Logger
	auditPath string

	session *scriptedSession
	monitor *card.Monitor
	dist    *stream.Distributor
	hub     *stream.Hub
	crypto  *fieldcrypt.Service
	auditor *audit.Logger
	ts      *httptest.Server
}

func TestCardFlowSuite(t *testing.T) {
	suite.Run(t, new(CardFlowSuite))
}

func (s *CardFlowSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	s.auditPath = filepath.Join(s.T().TempDir(), "audit.jsonl")

	key, err := fieldcrypt.GenerateKey()
	s.Require().NoError(err)
	s.crypto, err = fieldcrypt.NewFromBase64(key)
	s.Require().NoError(err)

	cfg := config.Default()
	cfg.Server.Security.Auth = config.Auth{
		Enabled: true,
		Header:  "X-API-Key",
		APIKeys: []string{apiKey},
	}
	cfg.Server.Security.Encryption = config.Encryption{
		Enabled: true,
		Key:     key,
		Fields:  []string{"Citizenid"},
	}
	cfg.Output.FieldMapping = map[string]string{"full_name_en": "EnglishName"}
	cfg.Card.PhotoCommands = cfg.Card.PhotoCommands[:2]
	cfg.Card.SettleDelay = 0
	cfg.Card.RetryDelay = 10 * time.Millisecond

	commands, err := card.NewCommandSet(
		cfg.Card.SelectCommand,
		cfg.Card.FieldCommands,
		cfg.Card.PhotoCommands,
	)
	s.Require().NoError(err)

	s.auditor = audit.New(s.logger, true, export.NewFileExporter(s.auditPath))
	s.Require().NoError(s.auditor.Open(context.Background()))

	engine := card.NewEngine(s.logger, commands)
	s.session = &scriptedSession{
		reader: testReader,
		card:   testCard(commands),
		steps:  make(chan bool, 4),
	}
	factory := func() (card.Session, error) { return s.session, nil }
	s.monitor = card.NewMonitor(s.logger, factory, engine, card.Options{
		ConnectAttempts: 1,
		ConnectDelay:    10 * time.Millisecond,
	})

	m := metrics.New(prometheus.NewRegistry())
	s.hub = stream.NewHub(s.logger, m)
	shaper := stream.NewShaper(
		s.logger,
		cfg.Output,
		cfg.Server.Security.Encryption,
		s.crypto,
		s.auditor,
	)
	s.dist = stream.NewDistributor(
		s.logger,
		s.monitor.Events(),
		shaper,
		s.hub,
		s.auditor,
		stream.DistributorOptions{Metrics: m},
	)

	server := stream.New(
		cfg,
		s.logger,
		stream.WithAudit(s.auditor),
		stream.WithMetrics(m),
	)
	handlers := server.GetStreamHandler(s.hub)
	handlers = append(
		handlers,
		server.GetHealthHandler("integration", time.Now())...)
	server.RegisterHandlers(handlers)

	s.ts = httptest.NewServer(server.Echo)

	s.monitor.Start()
	s.dist.Start()
}

func (s *CardFlowSuite) TearDownTest() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.monitor.Stop(ctx)
	s.Require().NoError(s.dist.Stop(ctx))
	s.ts.Close()
	s.Require().NoError(s.auditor.Close(ctx))
}

func (s *CardFlowSuite) dial(withKey bool) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(s.ts.URL, "http") + "/ws"
	wsCfg, err := websocket.NewConfig(url, "http://localhost/")
	s.Require().NoError(err)

	if withKey {
		wsCfg.Header.Set("X-API-Key", apiKey)
	}

	return websocket.DialConfig(wsCfg)
}

func (s *CardFlowSuite) receive(ws *websocket.Conn) string {
	s.Require().NoError(ws.SetReadDeadline(time.Now().Add(5 * time.Second)))

	var msg string
	s.Require().NoError(websocket.Message.Receive(ws, &msg))

	return msg
}

// auditActions reads the exported audit trail and returns the recorded
// action names.
func (s *CardFlowSuite) auditActions() map[string]bool {
	f, err := os.Open(s.auditPath)
	s.Require().NoError(err)
	defer func() { _ = f.Close() }()

	actions := make(map[string]bool)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry audit.Entry
		s.Require().NoError(json.Unmarshal(scanner.Bytes(), &entry))
		actions[entry.Action] = true
	}
	s.Require().NoError(scanner.Err())

	return actions
}

func (s *CardFlowSuite) TestCardReadReachesSubscriber() {
	resp, err := http.Get(s.ts.URL + "/health")
	s.Require().NoError(err)
	_ = resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// A handshake without a key must be rejected before subscribing.
	_, err = s.dial(false)
	s.Error(err)

	ws, err := s.dial(true)
	s.Require().NoError(err)
	defer func() { _ = ws.Close() }()

	s.Require().Eventually(func() bool {
		return s.hub.Count() == 1
	}, 5*time.Second, 10*time.Millisecond)

	// Seat the card.
	s.session.steps <- true

	var payload map[string]string
	s.Require().NoError(json.Unmarshal([]byte(s.receive(ws)), &payload))

	s.Equal("readsmartcard", payload["mode"])

	citizenID, err := s.crypto.Decrypt(payload["Citizenid"])
	s.Require().NoError(err)
	s.Equal("1101700203344", citizenID)

	s.Equal("นาย", payload["Th_Prefix"])
	s.Equal("สมชาย", payload["Th_Firstname"])
	s.Equal("ใจดี", payload["Th_Lastname"])
	s.Equal("Mr. Somchai Jaidee", payload["EnglishName"])
	s.NotContains(payload, "full_name_en")
	s.Equal("1990/01/15", payload["Birthday"])
	s.Equal("1", payload["Sex"])
	s.Equal("กรมการปกครอง", payload["card_issuer"])
	s.Equal("2015/03/01", payload["issue_date"])
	s.Equal("2025/02/28", payload["expire_date"])
	s.Equal("99/1", payload["addrHouseNo"])
	s.Equal("หมู่ 5", payload["addrVillageNo"])
	s.Equal("บางนา", payload["addrTambol"])
	s.Equal("บางนา", payload["addrAmphur"])
	s.Equal(
		"99/1 หมู่ 5 ถนนสุขุมวิท บางนา บางนา กรุงเทพมหานคร",
		payload["Address"],
	)

	wantPhoto := base64.StdEncoding.EncodeToString([]byte{0xFF, 0xD8, 0x11, 0x22})
	s.Equal(wantPhoto, payload["PhotoRaw"])

	// Pull the card.
	s.session.steps <- false
	s.JSONEq(`{"mode":"removedsmartcard"}`, s.receive(ws))
}

func (s *CardFlowSuite) TestAuditTrailCoversTheFlow() {
	ws, err := s.dial(true)
	s.Require().NoError(err)

	s.Require().Eventually(func() bool {
		return s.hub.Count() == 1
	}, 5*time.Second, 10*time.Millisecond)

	s.session.steps <- true
	_ = s.receive(ws)
	s.Require().NoError(ws.Close())

	// A rejected key becomes an auth_failure entry.
	_, err = s.dial(false)
	s.Error(err)

	s.Require().Eventually(func() bool {
		actions := s.auditActions()

		return actions["auth_success"] &&
			actions["connection_open"] &&
			actions["card_read"] &&
			actions["auth_failure"]
	}, 5*time.Second, 50*time.Millisecond)

	s.False(s.auditActions()["validation_failure"])
}
