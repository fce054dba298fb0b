package backend

import (
	"testing"

	"caixa/internal/config"
)

func TestFromAppConfig(t *testing.T) {
	app := &config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/caixa.db",
		AMQPURL:      "amqp://localhost:5672",
		AMQPExchange: "caixa.transactions",
		AMQPQueue:    "caixa.summaries",
	}

	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != SQLiteBackend {
		t.Errorf("Type = %s, want sqlite", cfg.Type)
	}
	if cfg.SQLiteDBPath != "/tmp/caixa.db" {
		t.Errorf("SQLiteDBPath = %s", cfg.SQLiteDBPath)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Error("expected error for unknown backend type")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory ok", Config{Type: MemoryBackend}, false},
		{"sqlite ok", Config{Type: SQLiteBackend, SQLiteDBPath: "/tmp/x.db"}, false},
		{"sqlite missing path", Config{Type: SQLiteBackend}, true},
		{"invalid type", Config{Type: "sheets"}, true},
		{"amqp without exchange", Config{Type: MemoryBackend, AMQPURL: "amqp://h", AMQPQueue: "q"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://h", AMQPExchange: "x"}, true},
		{"amqp complete", Config{Type: MemoryBackend, AMQPURL: "amqp://h", AMQPExchange: "x", AMQPQueue: "q"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
