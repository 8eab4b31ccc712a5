//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"context"

	"github.com/google/wire"

	"github.com/zeusync/experience/internal/camera"
	"github.com/zeusync/experience/internal/config"
	"github.com/zeusync/experience/internal/core/observability/log"
	"github.com/zeusync/experience/internal/core/runloop"
	"github.com/zeusync/experience/internal/core/surface"
	"github.com/zeusync/experience/internal/experience"
	"github.com/zeusync/experience/internal/render"
)

func InitializeExperience(
	ctx context.Context,
	cfg config.Config,
	s surface.Surface,
	sched runloop.Scheduler,
	backend render.Backend,
	input camera.Input,
	logger log.Log,
) (*experience.Experience, func(), error) {
	wire.Build(ExperienceSet)
	return nil, nil, nil
}
