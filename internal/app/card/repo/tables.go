package repo

import (
	"fmt"
	"strconv"
	"strings"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/cardsync-service/internal/app/card/domain"
	"github.com/light-bringer/cardsync-service/internal/models/m_about_me"
	"github.com/light-bringer/cardsync-service/internal/models/m_education"
	"github.com/light-bringer/cardsync-service/internal/models/m_portfolio_project"
	"github.com/light-bringer/cardsync-service/internal/models/m_work_experience"
)

// updateModel is the part of each card model the write path needs.
type updateModel interface {
	UpdateMut(id int64, updates map[string]interface{}) *spanner.Mutation
}

type cardTable struct {
	name  string
	model updateModel
}

var cardTables = map[domain.CardType]cardTable{
	domain.CardWorkExperience:   {name: m_work_experience.TableName, model: m_work_experience.NewModel()},
	domain.CardEducation:        {name: m_education.TableName, model: m_education.NewModel()},
	domain.CardPortfolioProject: {name: m_portfolio_project.TableName, model: m_portfolio_project.NewModel()},
	domain.CardAboutMe:          {name: m_about_me.TableName, model: m_about_me.NewModel()},
}

// TableFor returns the table backing a card type.
func TableFor(ct domain.CardType) (string, error) {
	t, ok := cardTables[ct]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCardType, string(ct))
	}
	return t.name, nil
}

// columnValues validates fields against the card schema and converts them to
// column values. Column names equal field names.
func columnValues(ct domain.CardType, fields map[string]string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(fields))
	for name, value := range fields {
		if err := ct.ValidateField(name, value); err != nil {
			return nil, err
		}
		kind, _ := ct.FieldKind(name)
		switch kind {
		case domain.KindInt:
			v := strings.TrimSpace(value)
			if v == "" {
				out[name] = int64(0)
				continue
			}
			n, _ := strconv.ParseInt(v, 10, 64)
			out[name] = n
		default:
			out[name] = value
		}
	}
	return out, nil
}
