package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/rajivgeraev/baterx-api/internal/db"
	"github.com/rajivgeraev/baterx-api/internal/models"
)

// ErrResetTokenInvalid — токен сброса пароля не найден, просрочен
// или уже использован
var ErrResetTokenInvalid = errors.New("токен сброса пароля недействителен")

const userColumns = `id, email, display_name, photo_url, telegram_id,
       total_trades, successful_trades, rating, total_ratings,
       created_at, updated_at, last_login_at`

// profileUpdatable — белый список полей редактирования профиля
var profileUpdatable = map[string]bool{
	"display_name": true,
	"photo_url":    true,
}

// Апсерт профиля: пустые переданные поля не затирают сохраненные,
// уже заданный хеш пароля не перезаписывается, отметка входа ставится
// при каждом вызове
const upsertProfileByEmailSQL = `
	INSERT INTO users (email, display_name, photo_url, password_hash, last_login_at)
	VALUES ($1, $2, $3, NULLIF($4, ''), now())
	ON CONFLICT (email) DO UPDATE SET
		display_name  = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
		photo_url     = COALESCE(NULLIF(EXCLUDED.photo_url, ''), users.photo_url),
		password_hash = COALESCE(users.password_hash, EXCLUDED.password_hash),
		last_login_at = now(),
		updated_at    = now()
	RETURNING ` + userColumns

const upsertProfileByTelegramSQL = `
	INSERT INTO users (telegram_id, display_name, photo_url, last_login_at)
	VALUES ($1, $2, $3, now())
	ON CONFLICT (telegram_id) DO UPDATE SET
		display_name  = COALESCE(NULLIF(EXCLUDED.display_name, ''), users.display_name),
		photo_url     = COALESCE(NULLIF(EXCLUDED.photo_url, ''), users.photo_url),
		last_login_at = now(),
		updated_at    = now()
	RETURNING ` + userColumns

// UpsertProfileByEmail создает профиль при первом входе или
// домердживает его при каждом последующем: перезаписываются только
// переданные поля, отметка входа ставится всегда, без проверки
// "изменилось ли что-то". Счетчики обменов заводятся нулями
func UpsertProfileByEmail(email, displayName, photoURL, passwordHash string) (*models.User, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	row := db.Pool.QueryRow(ctx, upsertProfileByEmailSQL,
		email, displayName, photoURL, passwordHash)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка синхронизации профиля: %w", err)
	}
	return user, nil
}

// UpsertProfileByTelegram — тот же апсерт для федеративного входа,
// ключом служит внешний идентификатор Telegram
func UpsertProfileByTelegram(telegramID int64, displayName, photoURL string) (*models.User, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	row := db.Pool.QueryRow(ctx, upsertProfileByTelegramSQL,
		telegramID, displayName, photoURL)

	user, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("ошибка синхронизации профиля: %w", err)
	}
	return user, nil
}

// GetUserByID возвращает профиль или (nil, nil), если его нет
func GetUserByID(userID uuid.UUID) (*models.User, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	row := db.Pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", userID)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка получения пользователя: %w", err)
	}
	return user, nil
}

// GetUserWithCredentials возвращает профиль и bcrypt-хеш пароля для
// проверки входа. (nil, "", nil) — аккаунта нет
func GetUserWithCredentials(email string) (*models.User, string, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	row := db.Pool.QueryRow(ctx,
		"SELECT "+userColumns+", COALESCE(password_hash, '') FROM users WHERE email = $1", email)

	var user models.User
	var emailCol pgtype.Text
	var telegramID pgtype.Int8
	var lastLogin pgtype.Timestamptz
	var hash string

	err := row.Scan(
		&user.ID, &emailCol, &user.DisplayName, &user.PhotoURL, &telegramID,
		&user.Stats.TotalTrades, &user.Stats.SuccessfulTrades,
		&user.Stats.Rating, &user.Stats.TotalRatings,
		&user.CreatedAt, &user.UpdatedAt, &lastLogin,
		&hash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("ошибка получения пользователя: %w", err)
	}

	applyNullableUserFields(&user, emailCol, telegramID, lastLogin)
	return &user, hash, nil
}

// UpdateUserProfile частично обновляет профиль
func UpdateUserProfile(userID uuid.UUID, fields map[string]interface{}) error {
	query, args, err := buildUpdate("users", userID, fields, profileUpdatable)
	if err != nil {
		return err
	}

	ctx, cancel := db.GetContext()
	defer cancel()

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка обновления профиля: %w", err)
	}
	return nil
}

// SetPassword задает новый bcrypt-хеш пароля пользователя
func SetPassword(userID uuid.UUID, passwordHash string) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := db.Pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("ошибка смены пароля: %w", err)
	}
	return nil
}

// IncrementTradeStats наращивает счетчики обменов после завершения
func IncrementTradeStats(userID uuid.UUID) error {
	ctx, cancel := db.GetContext()
	defer cancel()

	_, err := db.Pool.Exec(ctx, `
		UPDATE users
		SET total_trades = total_trades + 1,
		    successful_trades = successful_trades + 1,
		    updated_at = now()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("ошибка обновления счетчиков обменов: %w", err)
	}
	return nil
}

// CreateResetToken выпускает одноразовый токен сброса пароля
func CreateResetToken(userID uuid.UUID, ttl time.Duration) (uuid.UUID, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var token uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO password_reset_tokens (user_id, expires_at)
		VALUES ($1, now() + $2)
		RETURNING token
	`, userID, ttl).Scan(&token)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ошибка создания токена сброса: %w", err)
	}
	return token, nil
}

// ConsumeResetToken гасит токен и возвращает пользователя, которому
// он был выдан. Просроченный или использованный токен недействителен
func ConsumeResetToken(token uuid.UUID) (uuid.UUID, error) {
	ctx, cancel := db.GetContext()
	defer cancel()

	var userID uuid.UUID
	err := db.Pool.QueryRow(ctx, `
		UPDATE password_reset_tokens
		SET used = true
		WHERE token = $1 AND used = false AND expires_at > now()
		RETURNING user_id
	`, token).Scan(&userID)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return uuid.Nil, ErrResetTokenInvalid
		}
		return uuid.Nil, fmt.Errorf("ошибка проверки токена сброса: %w", err)
	}
	return userID, nil
}

// scanUser читает строку профиля с nullable-полями
func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var email pgtype.Text
	var telegramID pgtype.Int8
	var lastLogin pgtype.Timestamptz

	err := row.Scan(
		&user.ID, &email, &user.DisplayName, &user.PhotoURL, &telegramID,
		&user.Stats.TotalTrades, &user.Stats.SuccessfulTrades,
		&user.Stats.Rating, &user.Stats.TotalRatings,
		&user.CreatedAt, &user.UpdatedAt, &lastLogin,
	)
	if err != nil {
		return nil, err
	}

	applyNullableUserFields(&user, email, telegramID, lastLogin)
	return &user, nil
}

func applyNullableUserFields(user *models.User, email pgtype.Text, telegramID pgtype.Int8, lastLogin pgtype.Timestamptz) {
	if email.Valid {
		user.Email = email.String
	}
	if telegramID.Valid {
		user.TelegramID = telegramID.Int64
	}
	if lastLogin.Valid {
		user.LastLoginAt = lastLogin.Time
	}
}
