package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/juntyr/wobbly"
	"github.com/juntyr/wobbly/leakcheck"
	"github.com/juntyr/wobbly/metrics"
	"github.com/juntyr/wobbly/rc"
	"github.com/juntyr/wobbly/zaplog"
)

func main() {
	var (
		demo        = flag.Bool("demo", false, "Run a scripted single-goroutine walkthrough")
		stress      = flag.Bool("stress", false, "Run the concurrent release stress")
		groups      = flag.Int("groups", 1000, "Stress: number of groups")
		members     = flag.Int("members", 8, "Stress: members per group")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log lifecycle events to stderr")
		showMetrics = flag.Bool("metrics", false, "Print collected metrics before exiting")
	)
	flag.Parse()

	log := zap.NewNop()
	if *verbose {
		dev, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer dev.Sync()
		log = dev
	}
	maxprocs.Set(maxprocs.Logger(log.Sugar().Debugf))

	logObserver := zaplog.New(log)
	wobbly.Subscribe(logObserver)
	defer wobbly.Unsubscribe(logObserver)

	switch {
	case *interactive:
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *stress:
		if err := runStress(log, *groups, *members, *showMetrics); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	case *demo:
		if err := runDemo(*showMetrics); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

	default:
		fmt.Fprintln(os.Stderr, "Usage: wobbly -demo [-v] [-metrics]")
		fmt.Fprintln(os.Stderr, "       wobbly -stress [-groups n] [-members n] [-metrics]")
		fmt.Fprintln(os.Stderr, "       wobbly -i  (interactive mode)")
		os.Exit(1)
	}
}

func runDemo(showMetrics bool) error {
	collector := metrics.New()
	wobbly.Subscribe(collector)
	defer wobbly.Unsubscribe(collector)

	tracker := leakcheck.Install()
	defer tracker.Uninstall()

	fmt.Println("A wobbly group extends a value's lifetime by exactly one strong reference.")
	fmt.Println()

	r := rc.NewWithDrop("session-cache", func(v string) {
		fmt.Printf("  destructor: %q destroyed\n", v)
	})
	fmt.Printf("created %q  strong=%d weak=%d\n", r.Get(), r.StrongCount(), r.WeakCount())

	founder := rc.NewWobbly(r)
	fmt.Printf("founded group  members=%d strong=%d weak=%d\n",
		founder.Members(), founder.StrongCount(), founder.WeakCount())

	second := founder.Clone()
	third := founder.Clone()
	fmt.Printf("cloned members  members=%d weak=%d\n", founder.Members(), founder.WeakCount())

	r.Drop()
	fmt.Println("dropped the original handle; the group pin keeps the value alive")

	if s, ok := second.Upgrade(); ok {
		fmt.Printf("upgraded through a member: %q  strong=%d\n", s.Get(), s.StrongCount())
		s.Drop()
	}

	fmt.Println("dropping the first member releases the group's reference:")
	third.Drop()

	if _, ok := second.Upgrade(); !ok {
		fmt.Println("upgrade now fails; the remaining drops release nothing:")
	}
	second.Drop()
	founder.Drop()

	if err := tracker.Check(); err != nil {
		return err
	}
	fmt.Println("all groups reclaimed, no leaks")

	if showMetrics {
		fmt.Println()
		collector.WritePrometheus(os.Stdout)
	}
	return nil
}
