package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/pkg/errors"
	"github.com/thanhnguyen2187/d2-savior/config"
	"github.com/thanhnguyen2187/d2-savior/d2s"
	"github.com/thanhnguyen2187/d2-savior/d2s/ditem"
	"github.com/thanhnguyen2187/d2-savior/d2s/dschema"
	"github.com/thanhnguyen2187/d2-savior/ds"
	"github.com/thanhnguyen2187/d2-savior/ui"
	"go.uber.org/zap"
)

type (
	Args struct {
		Interactive *InteractiveCmd `arg:"subcommand:interactive"`
		Convert     *ConvertCmd     `arg:"subcommand:convert"`
		Info        *InfoCmd        `arg:"subcommand:info"`
		Config      string          `help:"path to the configuration file" placeholder:"FILE"`
		Schema      string          `help:"path to the schema, overrides the configuration" placeholder:"FILE"`
		Verbose     bool            `arg:"-v" help:"log debug messages"`
	}
	InteractiveCmd struct {
		Path string `arg:"positional,required" help:"save or stash to browse"`
	}
	ConvertCmd struct {
		From  string `arg:"required" help:"path to source file" placeholder:"hero.d2s"`
		To    string `arg:"required" help:"path to destination file" placeholder:"hero.json"`
		Force bool   `help:"overwrite the destination file"`
		// ItemVersion is needed for standalone item records only.
		ItemVersion uint32 `arg:"--item-version" default:"97" help:"file version of item records"`
	}
	InfoCmd struct {
		Path        string `arg:"positional,required" help:"file to summarize"`
		ItemVersion uint32 `arg:"--item-version" default:"97" help:"file version of item records"`
	}

	// Env is what every subcommand needs once the configuration is loaded.
	Env struct {
		Logger *zap.Logger
		Cache  *dschema.Cache
		Config d2s.Config
	}
)

const (
	// DefaultItemVersion is the file version assumed for item records, 0x61.
	DefaultItemVersion = 97
)

func (Args) Description() string {
	des := strings.Join(
		[]string{
			"Stay awhile and listen.\n",
			"A CLI utility to convert character saves, item records and shared stashes",
			"to JSON and back.",
		},
		"\n",
	)
	des += "\n"
	return des
}

func CheckExistence(path string) bool {
	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return false
	}
	return err == nil
}

func NewEnv(args Args) (*Env, error) {
	configPath := args.Config
	if configPath == "" {
		configPath = config.DefaultPath
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if args.Schema != "" {
		cfg.Schema.Path = args.Schema
	}

	logger, err := NewLogger(cfg.Logging, args.Verbose)
	if err != nil {
		err := errors.Wrap(err, "NewEnv error creating logger")
		return nil, err
	}
	schema, err := dschema.Load(cfg.Schema.Path)
	if err != nil {
		return nil, err
	}
	cache := dschema.NewCache(schema)
	cache.Prepopulate(cfg.Schema.Prepopulate...)
	logger.Debug(
		"loaded schema",
		zap.String("path", cfg.Schema.Path),
		zap.Int("versions", cache.Len()),
		zap.Bool("extended_stash", cfg.Codec.ExtendedStash),
	)

	return &Env{
		Logger: logger,
		Cache:  cache,
		Config: cfg.ToD2SConfig(),
	}, nil
}

func (e Env) ReadDocument(path string, itemVersion uint32) (*Document, []byte, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		err := errors.Wrapf(err, `ReadDocument error reading "%s"`, path)
		return nil, nil, err
	}
	doc, err := DecodeDocument(path, bs, e.Cache, e.Config, itemVersion)
	if err != nil {
		return nil, nil, err
	}
	return doc, bs, nil
}

// Convert turns a binary file into JSON, or JSON back into the binary file it describes.
func (e Env) Convert(cmd ConvertCmd) error {
	if !CheckExistence(cmd.From) {
		return errors.Errorf(`Convert error: source file "%s" does not exist`, cmd.From)
	}
	if CheckExistence(cmd.To) && !cmd.Force {
		return errors.Errorf(
			`Convert error: destination file "%s" exists, use --force to overwrite it`,
			cmd.To,
		)
	}
	bs, err := os.ReadFile(cmd.From)
	if err != nil {
		err := errors.Wrapf(err, `Convert error reading "%s"`, cmd.From)
		return err
	}

	var output []byte
	if IsJSON(bs) {
		doc, err := ParseDocument(bs)
		if err != nil {
			return err
		}
		output, err = EncodeDocument(*doc, e.Cache, e.Config)
		if err != nil {
			return err
		}
		e.Logger.Info(
			"encoded document",
			zap.String("kind", string(doc.Kind)),
			zap.Int("size", len(output)),
		)
	} else {
		doc, err := DecodeDocument(cmd.From, bs, e.Cache, e.Config, cmd.ItemVersion)
		if err != nil {
			return err
		}
		output, err = ds.DumpIndentedJSON(doc)
		if err != nil {
			err := errors.Wrap(err, "Convert error marshalling JSON")
			return err
		}
		e.Logger.Info(
			"decoded document",
			zap.String("kind", string(doc.Kind)),
			zap.Int("size", len(bs)),
		)
	}

	if err := os.WriteFile(cmd.To, output, 0644); err != nil {
		err := errors.Wrapf(err, `Convert error writing "%s"`, cmd.To)
		return err
	}
	e.Logger.Info("done converting", zap.String("from", cmd.From), zap.String("to", cmd.To))
	return nil
}

func (e Env) Info(cmd InfoCmd) error {
	doc, bs, err := e.ReadDocument(cmd.Path, cmd.ItemVersion)
	if err != nil {
		return err
	}
	output, err := ds.DumpIndentedJSON(Summarize(cmd.Path, bs, *doc))
	if err != nil {
		err := errors.Wrap(err, "Info error marshalling summary")
		return err
	}
	fmt.Println(string(output))
	return nil
}

func (e Env) Interactive(cmd InteractiveCmd) error {
	doc, _, err := e.ReadDocument(cmd.Path, DefaultItemVersion)
	if err != nil {
		return err
	}
	switch {
	case doc.Save != nil:
		return ui.Start(e.Logger, ui.SaveTitle(*doc.Save), doc.Save.Items)
	case doc.Stash != nil:
		return ui.Start(e.Logger, ui.StashTitle(*doc.Stash), doc.Stash.Items())
	}
	return ui.Start(e.Logger, cmd.Path, []ditem.Item{*doc.Item})
}

func Start() {
	args := Args{}
	parser := arg.MustParse(&args)
	if args.Interactive == nil && args.Convert == nil && args.Info == nil {
		parser.WriteHelp(os.Stdout)
		return
	}

	env, err := NewEnv(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() {
		_ = env.Logger.Sync()
	}()

	switch {
	case args.Interactive != nil:
		err = env.Interactive(*args.Interactive)
	case args.Convert != nil:
		err = env.Convert(*args.Convert)
	case args.Info != nil:
		err = env.Info(*args.Info)
	}
	if err != nil {
		env.Logger.Error("command failed", zap.Error(err))
		_ = env.Logger.Sync()
		os.Exit(1)
	}
}
