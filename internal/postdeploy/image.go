package postdeploy

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	"github.com/montysim/simdeploy/internal/shellexec"
)

// ImageTag derives the application image tag from the work tree's HEAD
// commit so pushed images are traceable to source. Outside a git work tree
// the tag falls back to "latest".
func ImageTag(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "latest"
	}

	head, err := repo.Head()
	if err != nil {
		return "latest"
	}

	return head.Hash().String()[:12]
}

// publishImage logs into the registry, builds the application image and
// pushes it. Returns the pushed reference's tag.
func (p *Pipeline) publishImage(ctx context.Context, registry string) (string, error) {
	login := fmt.Sprintf(
		"aws ecr get-login-password --region %s | docker login --username AWS --password-stdin %s",
		p.Config.Stack.Region, registry,
	)
	if _, err := p.Runner.Run(ctx, shellexec.Shell(login)); err != nil {
		return "", fmt.Errorf("registry login: %w", err)
	}

	tag := ImageTag(p.Config.Image.ContextDir)
	ref := fmt.Sprintf("%s/%s:%s", registry, p.Config.Image.Repository, tag)
	dockerfile := filepath.Join(p.Config.Image.ContextDir, p.Config.Image.Dockerfile)

	if _, err := p.Runner.Run(ctx, shellexec.Command{
		Name: "docker",
		Args: []string{"build", "-f", dockerfile, "-t", ref, p.Config.Image.ContextDir},
	}); err != nil {
		return "", fmt.Errorf("image build: %w", err)
	}

	if _, err := p.Runner.Run(ctx, shellexec.Command{
		Name: "docker",
		Args: []string{"push", ref},
	}); err != nil {
		return "", fmt.Errorf("image push: %w", err)
	}

	return tag, nil
}
