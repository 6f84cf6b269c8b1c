// Package publish builds a container artifact and pushes it to the registry.
// The pipeline is a strict sequence with no retries: build, conditionally tag
// with the manifest version, authenticate, push. The first terminal failure
// aborts everything after it. The container tool and registry client are
// opaque collaborators; relay invokes them and interprets exit status only.
package publish

import (
	"context"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/forgeworks/relay/internal/executor"
	"github.com/forgeworks/relay/internal/secrets"
	"github.com/forgeworks/relay/internal/version"
)

// Sentinel errors for the pipeline's terminal failure states.
var (
	// ErrBuildFailed indicates the container build tool exited non-zero.
	ErrBuildFailed = errors.New("image build failed")
	// ErrTagFailed indicates the version could not be resolved or applied.
	ErrTagFailed = errors.New("version tagging failed")
	// ErrAuthFailed indicates registry login was rejected.
	ErrAuthFailed = errors.New("registry authentication failed")
	// ErrPushFailed indicates a tag could not be pushed.
	ErrPushFailed = errors.New("image push failed")
)

// Config holds the pipeline's collaborator parameters.
type Config struct {
	// ImageRef is the base image identifier, without a tag.
	ImageRef string
	// RegistryURL is the registry endpoint to authenticate against.
	RegistryURL string
	// BuildFile is the container build definition passed to the build tool.
	BuildFile string
	// ManifestPath is the project manifest the version tag is resolved from.
	ManifestPath string
	// UsernameRef and PasswordRef name the secrets holding the registry
	// credentials. Resolved only at the authenticate step.
	UsernameRef string
	PasswordRef string
}

// Pipeline is the sequential delivery state machine.
type Pipeline struct {
	cfg     Config
	exec    executor.Runner
	secrets secrets.Resolver
	log     *zap.Logger
}

// New returns a publish pipeline.
func New(cfg Config, exec executor.Runner, resolver secrets.Resolver, log *zap.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, exec: exec, secrets: resolver, log: log}
}

// Run executes the pipeline. tagRelease enables the version tagging step;
// plain branch pushes skip it and publish only the default tag. The returned
// artifact reflects the tags that existed when the pipeline stopped.
func (p *Pipeline) Run(ctx context.Context, tagRelease bool) (*Artifact, error) {
	artifact := NewArtifact(p.cfg.ImageRef)

	if err := p.build(ctx, artifact); err != nil {
		return artifact, err
	}
	if tagRelease {
		if err := p.tag(ctx, artifact); err != nil {
			return artifact, err
		}
	}
	if err := p.authenticate(ctx); err != nil {
		return artifact, err
	}
	if err := p.push(ctx, artifact); err != nil {
		return artifact, err
	}

	p.log.Info("publish complete", zap.Strings("tags", artifact.Tags))
	return artifact, nil
}

func (p *Pipeline) build(ctx context.Context, artifact *Artifact) error {
	args := []string{"-f", p.cfg.BuildFile, "-t", artifact.Ref + ":" + DefaultTag, "."}
	if _, err := p.exec.Run(ctx, "build-image", args); err != nil {
		return fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}
	p.log.Info("image built", zap.String("ref", artifact.Ref))
	return nil
}

func (p *Pipeline) tag(ctx context.Context, artifact *Artifact) error {
	manifest, err := os.ReadFile(p.cfg.ManifestPath)
	if err != nil {
		return fmt.Errorf("%w: failed to read manifest %s: %v", ErrTagFailed, p.cfg.ManifestPath, err)
	}

	tag, err := version.Resolve(string(manifest))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTagFailed, err)
	}

	args := []string{artifact.Ref + ":" + DefaultTag, artifact.Ref + ":" + tag}
	if _, err := p.exec.Run(ctx, "tag-image", args); err != nil {
		return fmt.Errorf("%w: %v", ErrTagFailed, err)
	}

	artifact.AddTag(tag)
	p.log.Info("release tag applied", zap.String("tag", tag))
	return nil
}

// authenticate logs in to the registry with just-in-time credentials. The
// password travels over stdin and both values are cleared before returning,
// whatever the outcome.
func (p *Pipeline) authenticate(ctx context.Context) error {
	username, err := p.secrets.Resolve(ctx, p.cfg.UsernameRef)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer username.Clear()

	password, err := p.secrets.Resolve(ctx, p.cfg.PasswordRef)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	defer password.Clear()

	args := []string{"--username", username.String(), "--password-stdin", p.cfg.RegistryURL}
	if _, err := p.exec.RunWithInput(ctx, password.String(), "registry-login", args); err != nil {
		return fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	return nil
}

func (p *Pipeline) push(ctx context.Context, artifact *Artifact) error {
	for _, ref := range artifact.TagRefs() {
		if _, err := p.exec.Run(ctx, "registry-push", []string{ref}); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrPushFailed, ref, err)
		}
		p.log.Info("pushed", zap.String("ref", ref))
	}
	return nil
}
