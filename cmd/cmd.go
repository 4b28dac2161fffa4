// Package cmd parse args to configure application.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/lithammer/shortuuid/v4"
	"meshroom/directory"
	"meshroom/mesh"
	"meshroom/metric"
	"meshroom/relay"
)

// Config contains the parsed command line options.
type Config struct {
	RoomID      string
	MemberID    string
	MemberName  string
	RelayHost   string
	MetricsPort int

	// ServeRelay runs the shared signaling relay instead of joining a
	// room.
	ServeRelay bool
	RelayPort  int
}

// Validate validates the command line options.
func (c Config) Validate() error {
	if c.ServeRelay {
		return relay.Config{Port: c.RelayPort}.Validate()
	}
	if c.RoomID == "" {
		return errors.New("room must be set")
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	return nil
}

// Run starts the application.
func Run() {
	config, err := SetupConfig(os.Stdout, os.Args[1:])
	if err != nil {
		os.Exit(1)
	}

	if config.ServeRelay {
		r := relay.New(relay.Config{Port: config.RelayPort})
		if err = r.Start(); err != nil {
			log.Printf("error occurs in running relay %v", err)
			os.Exit(1)
		}
		return
	}

	m, err := mesh.New(mesh.Config{
		RelayHost: config.RelayHost,
		Directory: directory.Config{
			SetDefaultRoom:      true,
			DefaultRoomCapacity: directory.DefaultRoomCapacity,
		},
		Metrics: metric.Config{
			Port: config.MetricsPort,
			Path: metric.DefaultMetricsPath,
		},
	})
	if err != nil {
		log.Printf("error occurs in creating mesh %v", err)
		os.Exit(1)
	}
	m.Start()

	if err = m.EnsureRoom(config.RoomID, directory.DefaultRoomCapacity); err != nil {
		log.Printf("error occurs in ensuring room %s %v", config.RoomID, err)
		os.Exit(1)
	}

	s := m.NewSession(config.RoomID, config.MemberID, config.MemberName)
	if err = s.Join(); err != nil {
		log.Printf("error occurs in joining room %s %v", config.RoomID, err)
		os.Exit(1)
	}
	log.Printf("joined room %s as %s", config.RoomID, config.MemberID)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	if err = s.Leave(); err != nil {
		log.Printf("error occurs in leaving room %s %v", config.RoomID, err)
	}
	if err = m.Stop(); err != nil {
		log.Printf("error occurs in stopping mesh %v", err)
	}
}

// SetupConfig sets up and returns the configuration.
func SetupConfig(w io.Writer, args []string) (Config, error) {
	config, err := Parse(w, args)
	if err != nil {
		return config, err
	}
	if config.MemberID == "" {
		config.MemberID = shortuuid.New()
	}
	if err = config.Validate(); err != nil {
		return config, err
	}
	return config, nil
}

// Parse parses the command line arguments.
func Parse(w io.Writer, args []string) (Config, error) {
	con := Config{}

	fs := flag.NewFlagSet("meshroom", flag.ContinueOnError)
	fs.SetOutput(w)
	fs.StringVar(&con.RoomID, "room", directory.DefaultRoomID, "room to join")
	fs.StringVar(&con.MemberID, "id", "", "participant ID, generated when empty")
	fs.StringVar(&con.MemberName, "name", "", "display name")
	fs.StringVar(&con.RelayHost, "relay", "", "signaling relay host")
	fs.IntVar(&con.MetricsPort, "metrics-port", metric.DefaultMetricsPort, "metrics server port")
	fs.BoolVar(&con.ServeRelay, "serve-relay", false, "run the signaling relay instead of joining")
	fs.IntVar(&con.RelayPort, "relay-port", relay.DefaultPort, "relay server port")

	err := fs.Parse(args)
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse args: %w", err)
	}

	if fs.NArg() != 0 {
		return Config{}, errors.New("some args are not parsed")
	}

	return con, nil
}
