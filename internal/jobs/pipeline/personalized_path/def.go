package personalized_path

import (
	_ "embed"
	"fmt"
	"math/rand/v2"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	learningrepo "github.com/yungbote/skillsprint-backend/internal/data/repos/learning"
	"github.com/yungbote/skillsprint-backend/internal/llm"
	"github.com/yungbote/skillsprint-backend/internal/observability"
	"github.com/yungbote/skillsprint-backend/internal/platform/dbctx"
	"github.com/yungbote/skillsprint-backend/internal/platform/logger"
)

const PipelineName = "personalized_path"

//go:embed knowledge_areas.yaml
var defaultAreasYAML []byte

type DefaultArea struct {
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

func LoadDefaultAreas() ([]DefaultArea, error) {
	var doc struct {
		Areas []DefaultArea `yaml:"areas"`
	}
	if err := yaml.Unmarshal(defaultAreasYAML, &doc); err != nil {
		return nil, fmt.Errorf("decode default knowledge areas: %w", err)
	}
	if len(doc.Areas) == 0 {
		return nil, fmt.Errorf("default knowledge areas are empty")
	}
	return doc.Areas, nil
}

type PersonalizedPathPipeline struct {
	tx           dbctx.TxRunner
	log          *logger.Logger
	ai           llm.Client
	pathRepo     learningrepo.LearningPathRepo
	personalRepo learningrepo.PersonalizedPathRepo
	knowledge    learningrepo.KnowledgeRepo
	progressRepo learningrepo.SprintProgressRepo
	metrics      *observability.Metrics
	defaults     []DefaultArea
	randFloat    func() float64
	temperature  float64
}

func NewPersonalizedPathPipeline(
	db *gorm.DB,
	baseLog *logger.Logger,
	ai llm.Client,
	pathRepo learningrepo.LearningPathRepo,
	personalRepo learningrepo.PersonalizedPathRepo,
	knowledge learningrepo.KnowledgeRepo,
	progressRepo learningrepo.SprintProgressRepo,
	metrics *observability.Metrics,
) (*PersonalizedPathPipeline, error) {
	defaults, err := LoadDefaultAreas()
	if err != nil {
		return nil, err
	}
	return &PersonalizedPathPipeline{
		tx:           dbctx.NewGormTxRunner(db),
		log:          baseLog.With("job", PipelineName),
		ai:           ai,
		pathRepo:     pathRepo,
		personalRepo: personalRepo,
		knowledge:    knowledge,
		progressRepo: progressRepo,
		metrics:      metrics,
		defaults:     defaults,
		randFloat:    rand.Float64,
		temperature:  llm.DefaultTemperature,
	}, nil
}

// WithRand replaces the bootstrap score source.
func (p *PersonalizedPathPipeline) WithRand(f func() float64) *PersonalizedPathPipeline {
	if f != nil {
		p.randFloat = f
	}
	return p
}
