package channel

import (
	"net"
	"reflect"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/widdle/reader"
)

func TestMsgRoundTrip(t *testing.T) {
	msg := &Msg{
		SourceID:      BridgeID,
		DestinationID: RuntimeID,
		Namespace:     NamespaceControl,
		Payload:       `{"requestId":1,"method":"refreshPlaybackState"}`,
	}

	data, err := msg.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}

	got := new(Msg)
	if err := got.UnmarshalBinary(data); err != nil {
		t.Fatal(err)
	}

	if *got != *msg {
		t.Errorf("got %v; want %v", got, msg)
	}
}

// pipePair returns two connected channel ends with the given handlers
// installed.
func pipePair(t *testing.T, serverHandler, clientHandler HandlerFunc) (*Conn, *Conn) {
	t.Helper()

	p1, p2 := net.Pipe()
	server := newConn(p1, BridgeID, RuntimeID, serverHandler)
	client := newConn(p2, RuntimeID, BridgeID, clientHandler)

	t.Cleanup(func() {
		client.Close()
		server.Close()
	})

	return server, client
}

func TestCall(t *testing.T) {
	_, client := pipePair(t, func(method string, args map[string]string) (map[string]string, *CallError) {
		if method != MethodHasDirectControl {
			return nil, &CallError{Code: CodeUnknownMethod, Message: method}
		}

		return map[string]string{ArgDirect: "false"}, nil
	}, nil)

	result, err := client.Call(MethodHasDirectControl, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result[ArgDirect] != "false" {
		t.Errorf("direct: got %q; want %q", result[ArgDirect], "false")
	}
}

func TestCallErrorReply(t *testing.T) {
	_, client := pipePair(t, func(method string, args map[string]string) (map[string]string, *CallError) {
		return nil, &CallError{Code: CodeInvalidToken, Message: "token did not parse"}
	}, nil)

	_, err := client.Call(MethodRegisterMediaSession, map[string]string{ArgToken: "junk"})
	cerr, ok := err.(*CallError)
	if !ok {
		t.Fatalf("expected *CallError, got %v", err)
	}
	if cerr.Code != CodeInvalidToken {
		t.Errorf("code: got %q; want %q", cerr.Code, CodeInvalidToken)
	}
}

func TestCallBothDirections(t *testing.T) {
	server, _ := pipePair(t, nil, func(method string, args map[string]string) (map[string]string, *CallError) {
		return map[string]string{"echo": args["echo"]}, nil
	})

	result, err := server.Call(MethodMediaSessionCommand, map[string]string{"echo": "hello"})
	if err != nil {
		t.Fatal(err)
	}
	if result["echo"] != "hello" {
		t.Errorf("echo: got %q; want %q", result["echo"], "hello")
	}
}

func TestHandlerCallsBackOverSameConn(t *testing.T) {
	var (
		mu     sync.Mutex
		server *Conn
		echoed int
	)

	// The server relays each command back to the caller, the way the
	// daemon does when it has no direct controller.
	serverHandler := func(method string, args map[string]string) (map[string]string, *CallError) {
		mu.Lock()
		s := server
		mu.Unlock()

		if _, err := s.Call(MethodMediaSessionCommand, args); err != nil {
			return nil, &CallError{Code: CodeChannelUnavailable, Message: err.Error()}
		}

		return map[string]string{}, nil
	}
	clientHandler := func(method string, args map[string]string) (map[string]string, *CallError) {
		mu.Lock()
		echoed++
		mu.Unlock()

		return map[string]string{}, nil
	}

	s, client := pipePair(t, serverHandler, clientHandler)
	mu.Lock()
	server = s
	mu.Unlock()

	start := time.Now()
	if _, err := client.Call(MethodMediaSessionCommand, CommandArgs(reader.NewCommand(reader.ActionPlay))); err != nil {
		t.Fatal(err)
	}
	if elapsed := time.Since(start); elapsed >= DefaultCallTimeout {
		t.Errorf("round trip took %s; the nested call starved the read loop", elapsed)
	}

	mu.Lock()
	defer mu.Unlock()
	if echoed != 1 {
		t.Errorf("client handler invoked %d times; want 1", echoed)
	}
}

func TestCloseStopsConnGoroutines(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		p1, p2 := net.Pipe()
		server := newConn(p1, BridgeID, RuntimeID, nil)
		client := newConn(p2, RuntimeID, BridgeID, nil)

		client.Close()
		server.Close()
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if runtime.NumGoroutine() <= before+2 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Errorf("goroutines: got %d; want at most %d", runtime.NumGoroutine(), before+2)
}

func TestCallAfterClose(t *testing.T) {
	_, client := pipePair(t, nil, nil)

	if err := client.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := client.Call(MethodRefreshPlaybackState, nil); err != ErrClosed {
		t.Errorf("got %v; want %v", err, ErrClosed)
	}
}

func TestCommandArgsRoundTrip(t *testing.T) {
	cases := []reader.PlaybackCommand{
		reader.NewCommand(reader.ActionPlay),
		reader.SeekTo(42000),
		reader.PlayFromSearch("paddington"),
	}

	for _, cmd := range cases {
		got := ParseCommandArgs(CommandArgs(cmd))
		if got.Action != cmd.Action {
			t.Errorf("action: got %q; want %q", got.Action, cmd.Action)
		}
		if !reflect.DeepEqual(got.Params, cmd.Params) {
			t.Errorf("params: got %v; want %v", got.Params, cmd.Params)
		}
		if got.Timestamp != cmd.Timestamp {
			t.Errorf("timestamp: got %d; want %d", got.Timestamp, cmd.Timestamp)
		}
	}
}

func TestMetadataArgsRoundTrip(t *testing.T) {
	md := reader.NowPlayingMetadata{
		MediaID:         "book-7/chapter-2",
		Title:           "Chapter 2",
		Artist:          "A. A. Milne",
		Album:           "Winnie-the-Pooh",
		DurationMillis:  1830000,
		ArtworkURI:      "file:///covers/pooh.png",
		DisplayTitle:    "Winnie-the-Pooh",
		DisplaySubtitle: "Chapter 2",
	}

	if got := ParseMetadataArgs(MetadataArgs(md)); got != md {
		t.Errorf("got %+v; want %+v", got, md)
	}
}

func TestStateArgsRoundTrip(t *testing.T) {
	st := reader.PlaybackStateSnapshot{
		PositionMillis: 90500,
		IsPlaying:      true,
		Speed:          1.25,
		Actions:        reader.CapDefault,
		GeneratedAt:    1700000000000,
	}

	if got := ParseStateArgs(StateArgs(st)); got != st {
		t.Errorf("got %+v; want %+v", got, st)
	}
}
