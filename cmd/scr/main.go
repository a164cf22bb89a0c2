package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/1kawdalg/scr"
	"github.com/1kawdalg/scr/internal/logging"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

var errUsage = errors.New("usage")

type options struct {
	url        string
	fragment   string
	useHTTP    bool
	selector   string
	xpath      string
	attr       string
	all        bool
	download   string
	fileType   string
	configPath string
	dev        bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintln(stderr, err)
		return exitUsage
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}

	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		fmt.Fprintf(stderr, "logger: %v\n", err)
		return exitUsage
	}
	defer func() { _ = logger.Sync() }()

	scheme, err := scr.ParseScheme(cfg.Fetch.Scheme)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitUsage
	}

	client := scr.New(cfg, scr.WithLogger(logger))

	var results []string
	if opts.download != "" {
		results, err = download(ctx, client, opts, scheme)
	} else {
		results, err = query(ctx, client, opts, scheme)
	}
	if err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(stderr, err)
			return exitUsage
		}
		fmt.Fprintf(stderr, "error (%s): %v\n", scr.KindOfError(err), err)
		return exitError
	}

	for _, r := range results {
		fmt.Fprintln(stdout, r)
	}
	return exitOK
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("scr", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.url, "url", "", "Host and path to fetch, without scheme")
	fs.StringVar(&opts.fragment, "fragment", "", "HTML fragment to parse instead of fetching")
	fs.BoolVar(&opts.useHTTP, "http", false, "Use http instead of the configured scheme")
	fs.StringVar(&opts.selector, "selector", "", "CSS selector")
	fs.StringVar(&opts.xpath, "xpath", "", "XPath expression (instead of -selector)")
	fs.StringVar(&opts.attr, "attr", "", "Print this attribute instead of inner HTML")
	fs.BoolVar(&opts.all, "all", false, "Print every match, not only the first")
	fs.StringVar(&opts.download, "download", "", "Download -url to this path")
	fs.StringVar(&opts.fileType, "type", "", "Download file type: json, png, jpeg, jpg, xlsx, txt")
	fs.StringVar(&opts.configPath, "config", "", "YAML config file")
	fs.BoolVar(&opts.dev, "dev", false, "Development logging")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if fs.NArg() > 0 {
		return opts, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return opts, nil
}

func loadConfig(opts options) (*scr.Config, error) {
	var (
		cfg *scr.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = scr.LoadConfigFile(opts.configPath)
	} else {
		cfg, err = scr.LoadConfig()
	}
	if err != nil {
		return nil, err
	}

	if opts.useHTTP {
		cfg.Fetch.Scheme = string(scr.SchemeHTTP)
	}
	if opts.dev {
		cfg.Logging.Development = true
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

func download(ctx context.Context, client *scr.Client, opts options, scheme scr.Scheme) ([]string, error) {
	if opts.url == "" {
		return nil, fmt.Errorf("%w: -download needs -url", errUsage)
	}
	fileType, err := scr.ParseFileType(opts.fileType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	f, err := client.Download(ctx, opts.url, opts.download, scheme, fileType)
	if err != nil {
		return nil, err
	}
	return []string{f.Path}, nil
}

func query(ctx context.Context, client *scr.Client, opts options, scheme scr.Scheme) ([]string, error) {
	if (opts.url == "") == (opts.fragment == "") {
		return nil, fmt.Errorf("%w: give exactly one of -url or -fragment", errUsage)
	}
	if (opts.selector == "") == (opts.xpath == "") {
		return nil, fmt.Errorf("%w: give exactly one of -selector or -xpath", errUsage)
	}

	var doc *scr.Scraper
	if opts.fragment != "" {
		doc = client.FromFragment(opts.fragment)
	} else {
		var err error
		if doc, err = client.FromURL(ctx, opts.url, scheme); err != nil {
			return nil, err
		}
	}

	if opts.xpath != "" {
		return queryXPath(doc, opts)
	}

	switch {
	case opts.attr != "" && opts.all:
		return doc.AllAttrs(opts.selector, opts.attr)
	case opts.attr != "":
		v, err := doc.Attr(opts.selector, opts.attr)
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	case opts.all:
		return doc.AllText(opts.selector)
	default:
		v, err := doc.Text(opts.selector)
		if err != nil {
			return nil, err
		}
		return []string{v}, nil
	}
}

func queryXPath(doc *scr.Scraper, opts options) ([]string, error) {
	var matches scr.MatchSet
	if opts.all {
		var err error
		if matches, err = doc.XPathAll(opts.xpath); err != nil {
			return nil, err
		}
	} else {
		el, err := doc.XPathOne(opts.xpath)
		if err != nil {
			return nil, err
		}
		matches = scr.MatchSet{el}
	}

	out := make([]string, 0, len(matches))
	for _, el := range matches {
		if opts.attr == "" {
			out = append(out, el.InnerHTML())
			continue
		}
		v, err := el.Attr(opts.attr)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
