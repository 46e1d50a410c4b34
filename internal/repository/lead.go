package repository

import (
	"backend/internal/models"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// LeadFilter holds the optional predicates for listing leads. The "all"
// sentinel (or an empty string) disables a filter.
type LeadFilter struct {
	Search  string
	Status  string
	Channel string
}

func (f LeadFilter) Conditions() conditionSet {
	set := conditionSet{}

	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		set = set.And("(name ILIKE ? OR email ILIKE ? OR company ILIKE ?)", pattern, pattern, pattern)
	}
	if f.Status != "" && f.Status != FilterAll {
		set = set.And("status = ?", f.Status)
	}
	if f.Channel != "" && f.Channel != FilterAll {
		set = set.And("channel = ?", f.Channel)
	}

	return set
}

type LeadRepository interface {
	SaveLead(lead *models.Lead) error
	ListLeads(filter LeadFilter) ([]*models.Lead, error)
	UpdateLeadStatus(id int64, status string) (bool, error)
	CountByStatus() (map[string]int, error)
}

type leadRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewLeadRepository(db *sqlx.DB, logger *zap.Logger) LeadRepository {
	return &leadRepository{db: db, logger: logger}
}

func (r *leadRepository) SaveLead(lead *models.Lead) error {
	query := `INSERT INTO leads (name, email, company, status, channel, last_contact_at)
	          VALUES ($1, $2, $3, $4, $5, $6) RETURNING id, created_at`
	return r.db.QueryRowx(query, lead.Name, lead.Email, lead.Company, lead.Status,
		lead.Channel, lead.LastContactAt).Scan(&lead.ID, &lead.CreatedAt)
}

func (r *leadRepository) ListLeads(filter LeadFilter) ([]*models.Lead, error) {
	where, args := filter.Conditions().WhereClause()
	query := `SELECT id, name, email, company, status, channel, last_contact_at, created_at
	          FROM leads` + where + ` ORDER BY created_at DESC`

	var leads []*models.Lead
	if err := r.db.Select(&leads, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}
	return leads, nil
}

// UpdateLeadStatus returns false when no lead with the given id exists.
func (r *leadRepository) UpdateLeadStatus(id int64, status string) (bool, error) {
	result, err := r.db.Exec(`UPDATE leads SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *leadRepository) CountByStatus() (map[string]int, error) {
	rows, err := r.db.Queryx(`SELECT status AS k, COUNT(*) AS n FROM leads GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
