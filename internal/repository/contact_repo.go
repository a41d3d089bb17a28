package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"contact-book/internal/domain"
)

// ContactRepository define la persistencia de contactos. Toda operacion
// recibe el ownerID y filtra por el; un contacto ajeno se trata como inexistente.
type ContactRepository interface {
	Create(ctx context.Context, contact domain.Contact) error
	List(ctx context.Context, ownerID string, offset, limit int) ([]domain.Contact, error)
	GetByID(ctx context.Context, ownerID, id string) (domain.Contact, error)
	Update(ctx context.Context, ownerID, id string, patch domain.ContactPatch) (domain.Contact, error)
	Delete(ctx context.Context, ownerID, id string) error
	Search(ctx context.Context, ownerID, query string) ([]domain.Contact, error)
	ListWithBirthday(ctx context.Context, ownerID string) ([]domain.Contact, error)
}

type PgContactRepository struct {
	pool *pgxpool.Pool
}

func NewPgContactRepository(pool *pgxpool.Pool) *PgContactRepository {
	return &PgContactRepository{pool: pool}
}

const contactColumns = `id, owner_id, first_name, last_name, email, phone, birthday, additional_info, created_at`

func (r *PgContactRepository) Create(ctx context.Context, contact domain.Contact) error {
	const query = `
		INSERT INTO contacts (id, owner_id, first_name, last_name, email, phone, birthday, additional_info, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		contact.ID,
		contact.OwnerID,
		contact.FirstName,
		contact.LastName,
		contact.Email,
		contact.Phone,
		dateArg(contact.Birthday),
		contact.AdditionalInfo,
		contact.CreatedAt,
	)
	return err
}

func (r *PgContactRepository) List(ctx context.Context, ownerID string, offset, limit int) ([]domain.Contact, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		ORDER BY created_at ASC, id ASC
		OFFSET $2
		LIMIT $3
	`
	return r.queryContacts(ctx, query, ownerID, offset, limit)
}

func (r *PgContactRepository) GetByID(ctx context.Context, ownerID, id string) (domain.Contact, error) {
	const query = `SELECT ` + contactColumns + ` FROM contacts WHERE id = $1 AND owner_id = $2`
	return scanContact(r.pool.QueryRow(ctx, query, id, ownerID))
}

// Update aplica el patch en una sola sentencia. Los campos sin Set conservan
// su valor; birthday y additional_info admiten volver a NULL.
func (r *PgContactRepository) Update(ctx context.Context, ownerID, id string, patch domain.ContactPatch) (domain.Contact, error) {
	const query = `
		UPDATE contacts SET
			first_name      = COALESCE($3, first_name),
			last_name       = COALESCE($4, last_name),
			email           = COALESCE($5, email),
			phone           = COALESCE($6, phone),
			birthday        = CASE WHEN $7::boolean THEN $8::date ELSE birthday END,
			additional_info = CASE WHEN $9::boolean THEN $10::text ELSE additional_info END
		WHERE id = $1 AND owner_id = $2
		RETURNING ` + contactColumns
	return scanContact(r.pool.QueryRow(ctx, query,
		id,
		ownerID,
		patch.FirstName.Value,
		patch.LastName.Value,
		patch.Email.Value,
		patch.Phone.Value,
		patch.Birthday.Set,
		dateArg(patch.Birthday.Value),
		patch.AdditionalInfo.Set,
		patch.AdditionalInfo.Value,
	))
}

func (r *PgContactRepository) Delete(ctx context.Context, ownerID, id string) error {
	const query = `DELETE FROM contacts WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Search busca la subcadena sin distinguir mayusculas en nombre, apellido o email.
func (r *PgContactRepository) Search(ctx context.Context, ownerID, query string) ([]domain.Contact, error) {
	const sqlQuery = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1
		  AND (first_name ILIKE $2 OR last_name ILIKE $2 OR email ILIKE $2)
		ORDER BY created_at ASC, id ASC
	`
	return r.queryContacts(ctx, sqlQuery, ownerID, "%"+escapeLike(query)+"%")
}

func (r *PgContactRepository) ListWithBirthday(ctx context.Context, ownerID string) ([]domain.Contact, error) {
	const query = `
		SELECT ` + contactColumns + `
		FROM contacts
		WHERE owner_id = $1 AND birthday IS NOT NULL
		ORDER BY created_at ASC, id ASC
	`
	return r.queryContacts(ctx, query, ownerID)
}

func (r *PgContactRepository) queryContacts(ctx context.Context, query string, args ...any) ([]domain.Contact, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func scanContact(row pgx.Row) (domain.Contact, error) {
	var (
		c        domain.Contact
		birthday *time.Time
	)
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.FirstName,
		&c.LastName,
		&c.Email,
		&c.Phone,
		&birthday,
		&c.AdditionalInfo,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Contact{}, ErrNotFound
	}
	if err != nil {
		return domain.Contact{}, err
	}
	if birthday != nil {
		d := domain.DateOf(*birthday)
		c.Birthday = &d
	}
	return c, nil
}

func dateArg(d *domain.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike hace que los comodines de LIKE se comparen literalmente.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
