package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/jaxxstorm/crom"
)

// Version will be set by build process
var Version = "dev"

// initPatterns are the templates written by init for each bumper.
var initPatterns = map[string]string{
	"semver": "v0.1.%d",
	"atomic": "%d",
}

type CLI struct {
	Dir     string           `short:"C" default:"." type:"path" help:"Project directory (default: current directory)"`
	Verbose int              `short:"v" type:"counter" xor:"logging" help:"Enable debug logging"`
	Warn    bool             `short:"w" xor:"logging" help:"Only log warnings and errors"`
	Error   bool             `short:"e" xor:"logging" help:"Only log errors"`
	JSON    bool             `short:"j" help:"Output as JSON"`
	Version kong.VersionFlag `help:"Show version information"`

	Init   InitCmd   `cmd:"" help:"Create a .crom.toml file in the project directory."`
	Get    GetCmd    `cmd:"" help:"Print a version computed from the repository."`
	Write  WriteCmd  `cmd:"" aliases:"write-version" help:"Write a version into the files listed in .crom.toml."`
	Tag    TagCmd    `cmd:"" help:"Tag the next release locally and/or on GitHub."`
	Upload UploadCmd `cmd:"" help:"Upload artifacts to the GitHub release of the latest version."`
	Util   UtilCmd   `cmd:"" aliases:"utility,utilities" help:"Utilities that are useful during CI."`

	out io.Writer
}

type InitCmd struct {
	Bumper string `arg:"" enum:"semver,atomic" help:"How versions are bumped: semver (v0.1.%d) or atomic (%d)."`
	Force  bool   `short:"f" help:"Overwrite an existing config file"`
}

type GetCmd struct {
	NoSnapshot bool   `help:"Drop the -SNAPSHOT marker from latest"`
	Policy     string `help:"How latest treats a HEAD past its tag: snapshot, none or release"`

	Latest      struct{} `cmd:"" aliases:"latest-version,current-version" help:"Latest version, as a snapshot when HEAD has moved past its tag."`
	PreRelease  struct{} `cmd:"" name:"pre-release" aliases:"snapshot-version" help:"Next version marked with the HEAD commit id."`
	NextRelease struct{} `cmd:"" name:"next-release" aliases:"next-release-version,next-version" help:"Next version."`
	Release     struct{} `cmd:"" help:"Latest version, or the next one when HEAD has moved past its tag."`
}

type WriteCmd struct {
	NoSnapshot bool   `help:"Drop the -SNAPSHOT marker from latest"`
	Policy     string `help:"How latest treats a HEAD past its tag: snapshot, none or release"`

	Latest      struct{} `cmd:"" help:"Write the latest version. See 'get latest'."`
	PreRelease  struct{} `cmd:"" name:"pre-release" help:"Write the pre-release version. See 'get pre-release'."`
	NextRelease struct{} `cmd:"" name:"next-release" help:"Write the next version. See 'get next-release'."`
	Release     struct{} `cmd:"" help:"Write the release version. See 'get release'."`
	Custom      struct {
		Version string `arg:"" help:"The custom version to be written."`
	} `cmd:"" help:"Write a custom version."`
}

type GitHubFlags struct {
	GitHubToken string `name:"github-token" env:"GITHUB_TOKEN" help:"GitHub API token"`
	GitHubAPI   string `name:"github-api" env:"GITHUB_API_SERVER" help:"GitHub API server (default: api.github.com)"`
}

type TagCmd struct {
	GitHubFlags

	Target     []string `short:"t" default:"local" enum:"local,github" help:"Where to create the tag (local, github)"`
	AllowDirty bool     `help:"Tag even when the workspace has uncommitted changes"`
}

type UploadCmd struct {
	GitHubFlags

	Names        []string `arg:"" help:"Artifact names from .crom.toml"`
	ArtifactPath string   `type:"path" help:"Directory artifact paths are relative to (default: project root)"`
}

type UtilCmd struct {
	VerifyNoChanges struct{} `cmd:"" name:"verify-no-changes" help:"Exit non-zero if tracked files have changes."`
}

// exitError carries a non-zero exit code that isn't a failure to report.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	var cli CLI

	ctx := kong.Parse(&cli,
		kong.Name("crom"),
		kong.Description("Compute, write and tag project versions from Git tags"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)

	slog.SetDefault(newLogger(os.Stderr, logLevel(cli.Verbose, cli.Warn, cli.Error)))
	cli.out = os.Stdout

	err := cli.Run(context.Background(), ctx.Command())
	if err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode reports err and picks the process exit code: 2 for configuration
// problems, 1 for anything else.
func exitCode(err error) int {
	var exit exitError
	if errors.As(err, &exit) {
		return exit.code
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if crom.IsConfigurationError(err) {
		return 2
	}
	return 1
}

// Run executes the command kong selected, e.g. "get latest" or
// "write custom <version>".
func (c *CLI) Run(ctx context.Context, command string) error {
	if c.out == nil {
		c.out = os.Stdout
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return fmt.Errorf("no command given")
	}

	switch fields[0] {
	case "init":
		return c.runInit()
	case "get":
		req, err := request(fields[1:], c.Get.NoSnapshot, c.Get.Policy, "")
		if err != nil {
			return err
		}
		return c.runGet(req)
	case "write":
		req, err := request(fields[1:], c.Write.NoSnapshot, c.Write.Policy, c.Write.Custom.Version)
		if err != nil {
			return err
		}
		return c.runWrite(req)
	case "tag":
		return c.runTag(ctx)
	case "upload":
		return c.runUpload(ctx)
	case "util":
		return c.runVerifyNoChanges()
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

// request maps a version subcommand to the request it stands for. policy
// overrides --no-snapshot for latest.
func request(sub []string, noSnapshot bool, policy, custom string) (crom.Request, error) {
	if len(sub) == 0 {
		return crom.Request{}, fmt.Errorf("missing version subcommand")
	}

	switch sub[0] {
	case "latest":
		if policy != "" {
			p, err := crom.ParsePolicy(policy)
			if err != nil {
				return crom.Request{}, err
			}
			return crom.Request{Policy: p}, nil
		}
		return crom.LatestRequest(noSnapshot), nil
	case "pre-release":
		return crom.PreReleaseRequest(), nil
	case "next-release":
		return crom.NextReleaseRequest(), nil
	case "release":
		return crom.ReleaseRequest(), nil
	case "custom":
		return crom.CustomRequest(custom), nil
	default:
		return crom.Request{}, fmt.Errorf("unknown version subcommand %q", sub[0])
	}
}

func (c *CLI) runInit() error {
	path := filepath.Join(c.Dir, crom.ConfigFile)
	if _, err := os.Stat(path); err == nil && !c.Init.Force {
		return fmt.Errorf("%s already exists, use --force to overwrite it", path)
	}

	text, err := crom.DefaultConfig(initPatterns[c.Init.Bumper]).Encode()
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, text, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	slog.Info("created config, update it to match your project", "path", path)
	return nil
}

func (c *CLI) runGet(req crom.Request) error {
	project, err := crom.OpenProject(c.Dir)
	if err != nil {
		return err
	}

	version, err := project.FindVersion(req)
	if err != nil {
		return err
	}

	return c.printVersion(version)
}

func (c *CLI) printVersion(version crom.Version) error {
	if c.JSON {
		return json.NewEncoder(c.out).Encode(map[string]string{
			"version": version.String(),
		})
	}

	_, err := fmt.Fprintln(c.out, version.String())
	return err
}

func (c *CLI) runWrite(req crom.Request) error {
	project, err := crom.OpenProject(c.Dir)
	if err != nil {
		return err
	}

	version, err := project.FindVersion(req)
	if err != nil {
		return err
	}

	if err := project.WriteVersion(version); err != nil {
		return fmt.Errorf("writing version %s: %w", version, err)
	}

	slog.Info("wrote version", "version", version.String())
	return nil
}

func (c *CLI) runTag(ctx context.Context) error {
	project, err := crom.OpenProject(c.Dir)
	if err != nil {
		return err
	}

	targets := make([]crom.TagTarget, 0, len(c.Tag.Target))
	needsGitHub := false
	for _, name := range c.Tag.Target {
		target, err := crom.ParseTagTarget(name)
		if err != nil {
			return err
		}
		needsGitHub = needsGitHub || target == crom.TagTargetGitHub
		targets = append(targets, target)
	}

	var gh *crom.GitHubClient
	if needsGitHub {
		gh, err = project.GitHubClient(ctx, c.Tag.GitHubToken, c.Tag.GitHubAPI)
		if err != nil {
			return err
		}
	}

	version, err := project.FindVersion(crom.NextReleaseRequest())
	if err != nil {
		return err
	}

	if err := project.Tag(ctx, version, targets, c.Tag.AllowDirty, gh); err != nil {
		return err
	}

	return c.printVersion(version)
}

func (c *CLI) runUpload(ctx context.Context) error {
	project, err := crom.OpenProject(c.Dir)
	if err != nil {
		return err
	}

	gh, err := project.GitHubClient(ctx, c.Upload.GitHubToken, c.Upload.GitHubAPI)
	if err != nil {
		return err
	}

	version, err := project.FindVersion(crom.LatestRequest(true))
	if err != nil {
		return err
	}

	return project.Publish(ctx, gh, version, c.Upload.Names, c.Upload.ArtifactPath)
}

func (c *CLI) runVerifyNoChanges() error {
	repo, err := crom.OpenRepository(c.Dir)
	if err != nil {
		return err
	}

	clean, err := crom.IsWorkspaceClean(repo)
	if err != nil {
		return err
	}
	if !clean {
		slog.Error("repository has uncommitted changes")
		return exitError{code: 1}
	}
	return nil
}
