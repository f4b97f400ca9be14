// Package main is the spindle command line: it runs supervised commands,
// serves the HTTP boundary and demonstrates fibers and channels.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/viant/spindle"
	"github.com/viant/spindle/service/process"
)

var version = "dev"

const usage = `usage: spindle <command> [flags]

commands:
  exec  [-config URL] <shell command>   run a command under supervision
  serve [-config URL] [-addr A] [-port P] start the HTTP listener
  demo  [-deterministic]                run a fiber/channel pipeline
  version                               print the version
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	switch args[0] {
	case "exec":
		return runExec(args[1:])
	case "serve":
		return runServe(args[1:])
	case "demo":
		return runDemo(args[1:])
	case "version":
		fmt.Println(version)
		return 0
	}
	fmt.Fprintf(os.Stderr, "unknown command %q\n%s", args[0], usage)
	return 2
}

func loadConfig(URL string) (*spindle.Config, error) {
	if URL == "" {
		return spindle.DefaultConfig(), nil
	}
	return spindle.LoadConfig(context.Background(), URL)
}

func runExec(args []string) int {
	flags := flag.NewFlagSet("exec", flag.ContinueOnError)
	configURL := flags.String("config", "", "configuration URL")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	if flags.NArg() == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	config, err := loadConfig(*configURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	rt := spindle.New(spindle.WithConfig(config)).Runtime()
	defer rt.Shutdown()

	command := flags.Arg(0)
	for _, arg := range flags.Args()[1:] {
		command += " " + arg
	}
	id, err := rt.SpawnProcess(context.Background(), command, func(_ int64, eventType process.EventType, data string) {
		switch eventType {
		case process.EventStdout:
			fmt.Fprint(os.Stdout, data)
		case process.EventStderr:
			fmt.Fprint(os.Stderr, data)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	code, err := rt.Await(id)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if code < 0 {
		return 1
	}
	return int(code)
}

func runServe(args []string) int {
	flags := flag.NewFlagSet("serve", flag.ContinueOnError)
	configURL := flags.String("config", "", "configuration URL")
	address := flags.String("addr", "", "bind address (overrides config)")
	port := flags.Int("port", -1, "bind port (overrides config)")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	config, err := loadConfig(*configURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if *address != "" {
		config.Listener.Address = *address
	}
	if *port >= 0 {
		config.Listener.Port = *port
	}
	rt := spindle.New(spindle.WithConfig(config)).Runtime()
	if _, err = rt.Serve(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	if err = rt.Shutdown(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func runDemo(args []string) int {
	flags := flag.NewFlagSet("demo", flag.ContinueOnError)
	deterministic := flags.Bool("deterministic", false, "use deterministic scheduling")
	count := flags.Int64("n", 10, "values to send")
	if err := flags.Parse(args); err != nil {
		return 2
	}
	rt := spindle.New(spindle.WithDeterministicMode(*deterministic)).Runtime()
	defer rt.Shutdown()

	// deterministic fibers run on await, so the buffer must hold every value
	capacity := int64(4)
	if *deterministic {
		capacity = max(*count, 1)
	}
	ch, err := rt.Channels().Create(capacity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	producer, err := rt.Spawn(func() int64 {
		for i := int64(1); i <= *count; i++ {
			_ = rt.Channels().Send(ch, i*i)
		}
		return *count
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	consumer, err := rt.Spawn(func() int64 {
		var sum int64
		for i := int64(0); i < *count; i++ {
			v, err := rt.Channels().Recv(ch)
			if err != nil {
				return -1
			}
			sum += v
		}
		return sum
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	sent, _ := rt.Await(producer)
	sum, _ := rt.Await(consumer)
	stats := rt.Stats()
	fmt.Printf("sent %d values, sum of squares %d\n", sent, sum)
	fmt.Printf("fibers: spawned=%d completed=%d failed=%d\n", stats.Fibers.Spawned, stats.Fibers.Completed, stats.Fibers.Failed)
	return 0
}
