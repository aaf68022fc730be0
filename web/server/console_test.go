package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestJobLogger_BasicLogging(t *testing.T) {
	console := NewConsole(10)
	var out bytes.Buffer
	logger := NewJobLogger("render-123", console, &out)

	logger.Printf("%s\n", "Test log message")

	messages := console.Messages()
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Message != "Test log message\n" {
		t.Errorf("Expected message 'Test log message\\n', got '%s'", messages[0].Message)
	}
	if messages[0].Level != "info" {
		t.Errorf("Expected level 'info', got '%s'", messages[0].Level)
	}
	if time.Since(messages[0].Timestamp) > time.Second {
		t.Errorf("Timestamp seems too old: %v", messages[0].Timestamp)
	}
	if out.String() != "[render-123] Test log message\n" {
		t.Errorf("Unexpected echoed output: %q", out.String())
	}
}

func TestJobLogger_MultipleMessages(t *testing.T) {
	console := NewConsole(10)
	logger := NewJobLogger("render-456", console, nil)

	messages := []string{"Message 1", "Message 2", "Message 3"}
	for _, msg := range messages {
		logger.Printf("%s\n", msg)
	}

	received := console.Messages()
	if len(received) != len(messages) {
		t.Fatalf("Expected %d messages, got %d", len(messages), len(received))
	}
	for i, expected := range messages {
		if received[i].Message != expected+"\n" {
			t.Errorf("Message %d: expected '%s\\n', got '%s'", i, expected, received[i].Message)
		}
	}
}

func TestConsole_DropsOldestWhenFull(t *testing.T) {
	console := NewConsole(2)
	logger := NewJobLogger("render-789", console, nil)

	for i := 1; i <= 5; i++ {
		logger.Printf("Message %d\n", i)
	}

	received := console.Messages()
	if len(received) != 2 {
		t.Fatalf("Expected 2 retained messages, got %d", len(received))
	}
	if received[0].Message != "Message 4\n" || received[1].Message != "Message 5\n" {
		t.Errorf("Expected the newest messages, got %q and %q", received[0].Message, received[1].Message)
	}
	if console.Dropped() != 3 {
		t.Errorf("Expected 3 dropped messages, got %d", console.Dropped())
	}
}

func TestJobLogger_NilConsole(t *testing.T) {
	logger := NewJobLogger("render-nil", nil, nil)

	// Should not panic
	logger.Printf("Test message with nil console\n")
}

func TestJobLogger_Errorf(t *testing.T) {
	console := NewConsole(10)
	logger := NewJobLogger("render-err", console, nil).(*JobLogger)

	logger.Errorf("upload failed: %v\n", fmt.Errorf("denied"))

	messages := console.Messages()
	if len(messages) != 1 || messages[0].Level != "error" {
		t.Fatalf("Expected one error message, got %+v", messages)
	}
	if !strings.Contains(messages[0].Message, "denied") {
		t.Errorf("Expected formatted error, got %q", messages[0].Message)
	}
}

func TestConsoleMessage_JSONSerialization(t *testing.T) {
	msg := ConsoleMessage{
		Message:   "Test message",
		Timestamp: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     "info",
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	expected := `{"message":"Test message","timestamp":"2024-01-02T03:04:05Z","level":"info"}`
	if string(data) != expected {
		t.Errorf("Expected %s, got %s", expected, data)
	}
}
