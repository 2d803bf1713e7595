package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"syscall"
	"testing"

	"gorm.io/gorm"

	"mykitchen/internal/config"
	"mykitchen/internal/server"
)

type stubServer struct {
	startErr       error
	stopErr        error
	blockUntilStop bool

	startCalled bool
	stopCalled  bool
	cfg         server.Config

	startGate   chan struct{}
	startNotify chan struct{}
}

func newStubServer(startErr, stopErr error, block bool) *stubServer {
	s := &stubServer{
		startErr:       startErr,
		stopErr:        stopErr,
		blockUntilStop: block,
		startNotify:    make(chan struct{}),
	}
	if block {
		s.startGate = make(chan struct{})
	}
	return s
}

func (s *stubServer) Start() error {
	s.startCalled = true
	close(s.startNotify)
	if s.blockUntilStop {
		<-s.startGate
	}
	return s.startErr
}

func (s *stubServer) Stop() error {
	s.stopCalled = true
	if s.blockUntilStop {
		close(s.startGate)
	}
	return s.stopErr
}

func stubRuntime(t *testing.T, cfg config.Config) {
	t.Helper()

	originalLoadConfig := loadConfigFunc
	originalSetLogLevel := setLogLevelFunc
	originalSetLogFormat := setLogFormatFunc
	originalMock := newMockDatabaseFunc
	originalConfigure := configureDatabase
	originalClose := closeDatabase
	originalNewServer := newServerFunc
	originalSubscribe := subscribeShutdownSig

	t.Cleanup(func() {
		loadConfigFunc = originalLoadConfig
		setLogLevelFunc = originalSetLogLevel
		setLogFormatFunc = originalSetLogFormat
		newMockDatabaseFunc = originalMock
		configureDatabase = originalConfigure
		closeDatabase = originalClose
		newServerFunc = originalNewServer
		subscribeShutdownSig = originalSubscribe
	})

	loadConfigFunc = func() (config.Config, error) { return cfg, nil }
	setLogLevelFunc = func(string) error { return nil }
	setLogFormatFunc = func(string) error { return nil }
	closeDatabase = func(*gorm.DB) error { return nil }
}

func mockConfig() config.Config {
	return config.Config{
		Server:   config.ServerConfig{Addr: ":8080"},
		Database: config.DatabaseConfig{UseMock: true},
		Logging:  config.LoggingConfig{Level: "debug"},
		Auth:     config.AuthConfig{JWTSecret: "test-secret", JWTIssuer: "mykitchen"},
		Media:    config.MediaConfig{MaxUploadBytes: 1 << 20},
		CORS:     config.CORSConfig{AllowedOrigins: []string{"https://kitchen.example.com"}},
	}
}

func TestRunUsesMockDatabaseWhenConfigured(t *testing.T) {
	stubRuntime(t, mockConfig())

	var mockCalled bool
	newMockDatabaseFunc = func(ctx context.Context) (*gorm.DB, error) {
		mockCalled = true
		return &gorm.DB{}, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		t.Fatal("configureDatabase should not be called when mock is enabled")
		return nil, nil
	}

	serverStub := newStubServer(http.ErrServerClosed, nil, true)
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		serverStub.cfg = cfg
		return serverStub, nil
	}

	shutdownCh := make(chan os.Signal, 1)
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return shutdownCh, func() {}
	}

	go func() {
		<-serverStub.startNotify
		shutdownCh <- syscall.SIGTERM
	}()

	code := run(context.Background())
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
	if !mockCalled {
		t.Fatal("expected mock database to be used")
	}
	if !serverStub.startCalled || !serverStub.stopCalled {
		t.Fatal("expected server start and stop to be invoked")
	}
	if serverStub.cfg.API == nil || serverStub.cfg.API.Shopping == nil || serverStub.cfg.API.Delivery == nil {
		t.Fatal("expected API services to be wired into the server config")
	}
	if serverStub.cfg.API.MaxUploadBytes != 1<<20 {
		t.Fatalf("expected upload limit from config, got %d", serverStub.cfg.API.MaxUploadBytes)
	}
	if len(serverStub.cfg.AllowedOrigins) != 1 {
		t.Fatalf("expected allowed origins to be forwarded, got %v", serverStub.cfg.AllowedOrigins)
	}
}

func TestRunReturnsErrorWhenServerStartFails(t *testing.T) {
	stubRuntime(t, mockConfig())

	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) { return &gorm.DB{}, nil }

	serverStub := newStubServer(errors.New("listener failure"), nil, false)
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		return serverStub, nil
	}

	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		return make(chan os.Signal), func() {}
	}

	code := run(context.Background())
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if serverStub.stopCalled {
		t.Fatal("server stop should not be called on start error")
	}
}

func TestRunHandlesDatabaseConfigurationError(t *testing.T) {
	cfg := mockConfig()
	cfg.Database = config.DatabaseConfig{Driver: "postgres", URL: "postgres://example"}
	stubRuntime(t, cfg)

	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Fatal("mock database should not be used")
		return nil, nil
	}
	configureDatabase = func(config.DatabaseConfig) (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	}
	newServerFunc = func(server.Config) (serverLifecycle, error) {
		t.Fatal("server should not be created when the database fails")
		return nil, nil
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunFailsOnConfigError(t *testing.T) {
	stubRuntime(t, config.Config{})
	loadConfigFunc = func() (config.Config, error) { return config.Config{}, errors.New("JWT_SECRET must be set") }

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestRunFailsOnInvalidLogLevel(t *testing.T) {
	stubRuntime(t, mockConfig())
	setLogLevelFunc = func(string) error { return errors.New("unknown log level") }
	newMockDatabaseFunc = func(context.Context) (*gorm.DB, error) {
		t.Fatal("database should not be opened with an invalid log level")
		return nil, nil
	}

	if code := run(context.Background()); code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
}

func TestBuildAPIRejectsBrokenMailConfig(t *testing.T) {
	cfg := mockConfig()
	cfg.Mail = config.MailConfig{Enabled: true}
	if _, _, err := buildAPI(cfg, &gorm.DB{}); err == nil {
		t.Fatal("expected enabled mail without a host to fail")
	}
}
