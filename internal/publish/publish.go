package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"gwspec/internal/gateway"
	"gwspec/internal/model"
	"gwspec/internal/openapi"
)

// Step names a stage of the remote publish sequence.
type Step string

const (
	StepListAPIs   Step = "list-apis"
	StepListStages Step = "list-stages"
	StepSelect     Step = "select"
	StepImport     Step = "import"
	StepDeploy     Step = "deploy"
)

var (
	ErrNoAPIs       = errors.New("no rest apis available")
	ErrNoStages     = errors.New("no stages available")
	ErrNoSuchAPI    = errors.New("rest api not found")
	ErrNoSuchStage  = errors.New("stage not found")
	ErrNoChooser    = errors.New("a choice is required but no prompt is available")
	ErrBadSelection = errors.New("selection out of range")
)

// StepError reports which step of the publish sequence failed. Steps after it
// were not attempted.
type StepError struct {
	Step  Step
	APIID string
	Stage string
	Err   error
}

func (e *StepError) Error() string {
	var b strings.Builder
	b.WriteString("publish failed at ")
	b.WriteString(string(e.Step))
	if e.APIID != "" {
		b.WriteString(" (api " + e.APIID)
		if e.Stage != "" {
			b.WriteString(", stage " + e.Stage)
		}
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Err.Error())
	return b.String()
}

func (e *StepError) Unwrap() error { return e.Err }

// Chooser resolves a single choice among options, returning its index.
type Chooser interface {
	Choose(ctx context.Context, prompt string, options []string) (int, error)
}

// Target holds already-resolved choices. Empty fields are resolved through the
// Chooser.
type Target struct {
	APIID string
	Stage string
}

type Result struct {
	API          gateway.API
	Stage        string
	DeploymentID string
}

type Publisher struct {
	client  gateway.Client
	chooser Chooser
	log     *slog.Logger
}

func NewPublisher(client gateway.Client, chooser Chooser, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Publisher{client: client, chooser: chooser, log: log}
}

// Persist serializes the document and writes it under dir with the
// environment's artifact name. It returns the path and the serialized bytes.
func Persist(doc *openapi3.T, dir string, env model.Environment, format openapi.Format) (string, []byte, error) {
	data, err := openapi.Marshal(doc, format)
	if err != nil {
		return "", nil, err
	}
	path, err := openapi.WriteArtifact(dir, openapi.ArtifactName(env, format), data)
	if err != nil {
		return "", nil, err
	}
	return path, data, nil
}

// Publish overwrites the target REST API with body and deploys it to the
// target stage. Calls are sequential; the first failure aborts the rest.
func (p *Publisher) Publish(ctx context.Context, body []byte, target Target) (Result, error) {
	apis, err := p.client.ListAPIs(ctx)
	if err != nil {
		return Result{}, &StepError{Step: StepListAPIs, Err: err}
	}
	api, err := p.pickAPI(ctx, apis, target.APIID)
	if err != nil {
		return Result{}, &StepError{Step: StepSelect, APIID: target.APIID, Err: err}
	}
	p.log.Info("selected rest api", "api_id", api.ID, "name", api.Name)

	stages, err := p.client.ListStages(ctx, api.ID)
	if err != nil {
		return Result{}, &StepError{Step: StepListStages, APIID: api.ID, Err: err}
	}
	stage, err := p.pickStage(ctx, stages, target.Stage)
	if err != nil {
		return Result{}, &StepError{Step: StepSelect, APIID: api.ID, Stage: target.Stage, Err: err}
	}
	p.log.Info("selected stage", "api_id", api.ID, "stage", stage)

	if err := p.client.OverwriteAPI(ctx, api.ID, body); err != nil {
		return Result{}, &StepError{Step: StepImport, APIID: api.ID, Stage: stage, Err: err}
	}
	deploymentID, err := p.client.CreateDeployment(ctx, api.ID, stage)
	if err != nil {
		return Result{}, &StepError{Step: StepDeploy, APIID: api.ID, Stage: stage, Err: err}
	}

	return Result{API: api, Stage: stage, DeploymentID: deploymentID}, nil
}

func (p *Publisher) pickAPI(ctx context.Context, apis []gateway.API, want string) (gateway.API, error) {
	if len(apis) == 0 {
		return gateway.API{}, ErrNoAPIs
	}
	if want = strings.TrimSpace(want); want != "" {
		for _, a := range apis {
			if a.ID == want || a.Name == want {
				return a, nil
			}
		}
		return gateway.API{}, fmt.Errorf("%w: %s", ErrNoSuchAPI, want)
	}

	labels := make([]string, len(apis))
	for i, a := range apis {
		labels[i] = a.String()
	}
	idx, err := p.choose(ctx, "Select an API Gateway", labels)
	if err != nil {
		return gateway.API{}, err
	}
	return apis[idx], nil
}

func (p *Publisher) pickStage(ctx context.Context, stages []gateway.Stage, want string) (string, error) {
	if len(stages) == 0 {
		return "", ErrNoStages
	}
	if want = strings.TrimSpace(want); want != "" {
		for _, s := range stages {
			if s.Name == want {
				return s.Name, nil
			}
		}
		return "", fmt.Errorf("%w: %s", ErrNoSuchStage, want)
	}

	labels := make([]string, len(stages))
	for i, s := range stages {
		labels[i] = s.String()
	}
	idx, err := p.choose(ctx, "Select a stage", labels)
	if err != nil {
		return "", err
	}
	return stages[idx].Name, nil
}

func (p *Publisher) choose(ctx context.Context, prompt string, options []string) (int, error) {
	if p.chooser == nil {
		return 0, ErrNoChooser
	}
	idx, err := p.chooser.Choose(ctx, prompt, options)
	if err != nil {
		return 0, err
	}
	if idx < 0 || idx >= len(options) {
		return 0, fmt.Errorf("%w: %d of %d", ErrBadSelection, idx, len(options))
	}
	return idx, nil
}
