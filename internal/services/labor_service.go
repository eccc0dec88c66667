package services

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "costtrak/internal/errors"
	"costtrak/internal/logger"
	"costtrak/internal/models"
	"costtrak/internal/week"
)

// laborService handles labor actuals and headcount plan business logic.
type laborService struct {
	db *gorm.DB
}

// NewLaborService creates a new LaborServicer.
func NewLaborService(db *gorm.DB) LaborServicer {
	return &laborService{db: db}
}

// UpsertLaborActual records (or corrects, by re-entry) one craft's actual
// cost and hours for one week. weekEnding is normalized to a Sunday UTC
// midnight; rows are keyed on (project, craft, week). Deactivated crafts
// reject new entries.
func (s *laborService) UpsertLaborActual(projectID, craftTypeID uint, weekEnding time.Time, totalCost, totalHours float64) (*models.LaborActual, error) {
	if totalCost < 0 || totalHours < 0 {
		return nil, apperrors.ErrNegativeLaborValues
	}
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	var craft models.CraftType
	if err := s.db.First(&craft, craftTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCraftTypeNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !craft.IsActive {
		return nil, apperrors.ErrCraftTypeInactive
	}

	actual := &models.LaborActual{
		ProjectID:   projectID,
		CraftTypeID: craftTypeID,
		WeekEnding:  week.NextWeekEnding(weekEnding),
		TotalCost:   totalCost,
		TotalHours:  totalHours,
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "project_id"}, {Name: "craft_type_id"}, {Name: "week_ending"}},
		DoUpdates: clause.AssignmentColumns([]string{"total_cost", "total_hours", "updated_at"}),
	}).Create(actual).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	actual.CraftType = craft
	return actual, nil
}

// ImportLaborActuals ingests a payroll export. Payroll weeks arrive keyed
// by their Tuesday week-starting date; the Sunday week-ending conversion
// happens here, at the data boundary, and the converted date is what gets
// stored. Returns the number of rows upserted. Unknown craft codes fail
// the whole import: partial financial data is worse than none.
func (s *laborService) ImportLaborActuals(projectID uint, rows []LaborImportRow) (int, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return 0, err
	}

	craftByCode := make(map[string]models.CraftType)
	var crafts []models.CraftType
	if err := s.db.Find(&crafts).Error; err != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	for _, c := range crafts {
		craftByCode[c.Code] = c
	}

	count := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, row := range rows {
			craft, ok := craftByCode[row.CraftCode]
			if !ok {
				return apperrors.WithMessage(apperrors.ErrCraftTypeNotFound, "Unknown craft code: "+row.CraftCode)
			}
			if !craft.IsActive {
				return apperrors.WithMessage(apperrors.ErrCraftTypeInactive, "Deactivated craft code: "+row.CraftCode)
			}
			if row.TotalCost < 0 || row.TotalHours < 0 {
				return apperrors.ErrNegativeLaborValues
			}

			weekStarting, err := week.ParseDate(row.WeekStarting)
			if err != nil {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
			}

			actual := &models.LaborActual{
				ProjectID:   projectID,
				CraftTypeID: craft.ID,
				WeekEnding:  week.WeekEndingFromWeekStarting(weekStarting),
				TotalCost:   row.TotalCost,
				TotalHours:  row.TotalHours,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "project_id"}, {Name: "craft_type_id"}, {Name: "week_ending"}},
				DoUpdates: clause.AssignmentColumns([]string{"total_cost", "total_hours", "updated_at"}),
			}).Create(actual).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	logger.Get().Infow("payroll import completed", "project_id", projectID, "rows", count)
	return count, nil
}

// GetLaborActuals returns a project's labor actuals, optionally windowed
// by week-ending date, ordered by week then craft.
func (s *laborService) GetLaborActuals(projectID uint, from, to *time.Time) ([]models.LaborActual, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	q := s.db.Preload("CraftType").Where("project_id = ?", projectID)
	if from != nil {
		q = q.Where("week_ending >= ?", week.UTCMidnight(*from))
	}
	if to != nil {
		q = q.Where("week_ending <= ?", week.UTCMidnight(*to))
	}

	var actuals []models.LaborActual
	if err := q.Order("week_ending, craft_type_id").Find(&actuals).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return actuals, nil
}

// SaveHeadcountGrid upserts a batch of planner headcount entries (craft x
// week). Week-ending dates are normalized to Sunday UTC midnight before
// storage. Returns the number of entries saved.
func (s *laborService) SaveHeadcountGrid(projectID uint, entries []HeadcountEntryInput) (int, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		for _, e := range entries {
			if e.Headcount < 0 {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, "headcount must be zero or greater")
			}

			var craft models.CraftType
			if err := tx.First(&craft, e.CraftTypeID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return apperrors.ErrCraftTypeNotFound
				}
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			if !craft.IsActive {
				return apperrors.ErrCraftTypeInactive
			}

			weekEnding, err := week.ParseDate(e.WeekEnding)
			if err != nil {
				return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
			}

			hc := &models.HeadcountForecast{
				ProjectID:   projectID,
				CraftTypeID: e.CraftTypeID,
				WeekEnding:  week.NextWeekEnding(weekEnding),
				Headcount:   e.Headcount,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "project_id"}, {Name: "craft_type_id"}, {Name: "week_ending"}},
				DoUpdates: clause.AssignmentColumns([]string{"headcount", "updated_at"}),
			}).Create(hc).Error; err != nil {
				return apperrors.Wrap(apperrors.ErrInternalServer, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// GetHeadcountForecasts returns a project's headcount plan, optionally
// windowed by week-ending date.
func (s *laborService) GetHeadcountForecasts(projectID uint, from, to *time.Time) ([]models.HeadcountForecast, error) {
	if err := projectExists(s.db, projectID); err != nil {
		return nil, err
	}

	q := s.db.Preload("CraftType").Where("project_id = ?", projectID)
	if from != nil {
		q = q.Where("week_ending >= ?", week.UTCMidnight(*from))
	}
	if to != nil {
		q = q.Where("week_ending <= ?", week.UTCMidnight(*to))
	}

	var forecasts []models.HeadcountForecast
	if err := q.Order("week_ending, craft_type_id").Find(&forecasts).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return forecasts, nil
}

// projectExists returns ErrProjectNotFound if projectID does not resolve.
func projectExists(db *gorm.DB, projectID uint) error {
	var project models.Project
	if err := db.Select("id").First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProjectNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
