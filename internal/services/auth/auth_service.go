package auth

import (
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	initdata "github.com/telegram-mini-apps/init-data-golang"

	"github.com/rajivgeraev/baterx-api/internal/config"
	"github.com/rajivgeraev/baterx-api/internal/store"
	"github.com/rajivgeraev/baterx-api/internal/utils"
)

// resetTokenTTL — срок жизни токена сброса пароля
const resetTokenTTL = time.Hour

// AuthService – структура для обработки авторизации
type AuthService struct {
	cfg        *config.Config
	jwtService *utils.JWTService
	validate   *validator.Validate
}

// NewAuthService – конструктор AuthService
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		cfg:        cfg,
		jwtService: utils.NewJWTService(cfg.JWTSecret),
		validate:   validator.New(),
	}
}

// GetJWTService возвращает JWT сервис для middleware
func (s *AuthService) GetJWTService() *utils.JWTService {
	return s.jwtService
}

// RegisterHandler создает аккаунт по email и паролю
func (s *AuthService) RegisterHandler(c fiber.Ctx) error {
	var payload struct {
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=6"`
		DisplayName string `json:"display_name" validate:"required"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if err := s.validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	// Проверяем, не занята ли почта
	existing, hash, err := store.GetUserWithCredentials(payload.Email)
	if err != nil {
		log.Printf("Ошибка проверки аккаунта: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}
	if existing != nil && hash != "" {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Эта почта уже зарегистрирована"})
	}

	passwordHash, err := utils.HashPassword(payload.Password)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось создать аккаунт"})
	}

	// Апсерт профиля: при первом входе заводятся нулевые счетчики обменов
	user, err := store.UpsertProfileByEmail(payload.Email, payload.DisplayName, "", passwordHash)
	if err != nil {
		log.Printf("Ошибка создания профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось создать аккаунт"})
	}

	token, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось создать токен"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// LoginHandler выполняет вход по email и паролю
func (s *AuthService) LoginHandler(c fiber.Ctx) error {
	var payload struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if err := s.validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	user, hash, err := store.GetUserWithCredentials(payload.Email)
	if err != nil {
		log.Printf("Ошибка получения аккаунта: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось войти, проверьте свои данные"})
	}
	if user == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Аккаунт с такой почтой не найден"})
	}
	if hash == "" || !utils.CheckPassword(hash, payload.Password) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Неверный пароль"})
	}

	// Каждый успешный вход пишет профиль заново, даже если ничего
	// не изменилось: ставится отметка последнего входа
	user, err = store.UpsertProfileByEmail(payload.Email, "", "", "")
	if err != nil {
		log.Printf("Ошибка синхронизации профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось войти, проверьте свои данные"})
	}

	token, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось создать токен"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// TelegramAuthHandler — федеративный вход: проверяет initData,
// синхронизирует профиль и возвращает JWT
func (s *AuthService) TelegramAuthHandler(c fiber.Ctx) error {
	var payload struct {
		InitData string `json:"init_data"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	// Проверяем initData
	expiration := 24 * time.Hour
	if err := initdata.Validate(payload.InitData, s.cfg.TelegramBotToken, expiration); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Недействительные данные Telegram"})
	}

	data, err := initdata.Parse(payload.InitData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Не удалось разобрать initData"})
	}

	displayName := data.User.FirstName
	if data.User.LastName != "" {
		displayName += " " + data.User.LastName
	}

	user, err := store.UpsertProfileByTelegram(data.User.ID, displayName, data.User.PhotoURL)
	if err != nil {
		log.Printf("Ошибка синхронизации профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось войти через Telegram"})
	}

	token, err := s.jwtService.GenerateToken(user.ID.String())
	if err != nil {
		log.Printf("Ошибка генерации JWT: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось создать токен"})
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// LogoutHandler — сервер не хранит сессий, выход сводится к
// удалению токена на клиенте
func (s *AuthService) LogoutHandler(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}

// ForgotPasswordHandler выпускает токен сброса пароля. Ответ не
// раскрывает, существует ли аккаунт
func (s *AuthService) ForgotPasswordHandler(c fiber.Ctx) error {
	var payload struct {
		Email string `json:"email" validate:"required,email"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if err := s.validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	user, _, err := store.GetUserWithCredentials(payload.Email)
	if err != nil {
		log.Printf("Ошибка получения аккаунта: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	if user != nil {
		token, err := store.CreateResetToken(user.ID, resetTokenTTL)
		if err != nil {
			log.Printf("Ошибка создания токена сброса: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
		}
		// Доставка письма — внешняя забота; фиксируем выпуск токена
		log.Printf("Выпущен токен сброса пароля для %s: %s", payload.Email, token)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Если аккаунт существует, письмо для сброса пароля отправлено",
	})
}

// ResetPasswordHandler гасит токен и устанавливает новый пароль
func (s *AuthService) ResetPasswordHandler(c fiber.Ctx) error {
	var payload struct {
		Token    string `json:"token" validate:"required,uuid"`
		Password string `json:"password" validate:"required,min=6"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	if err := s.validate.Struct(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationMessage(err)})
	}

	token, err := uuid.Parse(payload.Token)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат токена"})
	}

	userID, err := store.ConsumeResetToken(token)
	if err != nil {
		if err == store.ErrResetTokenInvalid {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Токен сброса недействителен или просрочен"})
		}
		log.Printf("Ошибка проверки токена сброса: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка базы данных"})
	}

	passwordHash, err := utils.HashPassword(payload.Password)
	if err != nil {
		log.Printf("Ошибка хеширования пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось сменить пароль"})
	}

	if err := store.SetPassword(userID, passwordHash); err != nil {
		log.Printf("Ошибка смены пароля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Не удалось сменить пароль"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"message": "Пароль успешно изменен",
	})
}

// GetProfileHandler возвращает профиль текущего пользователя
func (s *AuthService) GetProfileHandler(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	user, err := store.GetUserByID(userID)
	if err != nil {
		log.Printf("Ошибка получения профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения профиля"})
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Профиль не найден"})
	}

	return c.JSON(fiber.Map{"user": user})
}

// UpdateProfileHandler домердживает только переданные поля профиля
func (s *AuthService) UpdateProfileHandler(c fiber.Ctx) error {
	userID, err := uuid.Parse(c.Locals("userID").(string))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат ID пользователя"})
	}

	var payload struct {
		DisplayName *string `json:"display_name"`
		PhotoURL    *string `json:"photo_url"`
	}

	if err := c.Bind().Body(&payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Неверный формат данных"})
	}

	fields := map[string]interface{}{}
	if payload.DisplayName != nil {
		fields["display_name"] = *payload.DisplayName
	}
	if payload.PhotoURL != nil {
		fields["photo_url"] = *payload.PhotoURL
	}

	if len(fields) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Нет полей для обновления"})
	}

	if err := store.UpdateUserProfile(userID, fields); err != nil {
		log.Printf("Ошибка обновления профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка обновления профиля"})
	}

	user, err := store.GetUserByID(userID)
	if err != nil {
		log.Printf("Ошибка получения профиля: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Ошибка получения профиля"})
	}

	return c.JSON(fiber.Map{
		"success": true,
		"user":    user,
	})
}

// validationMessage переводит первую ошибку валидации в понятное сообщение
func validationMessage(err error) string {
	errs, ok := err.(validator.ValidationErrors)
	if !ok || len(errs) == 0 {
		return "Неверные данные"
	}

	fe := errs[0]
	switch fe.Tag() {
	case "required":
		return "Поле " + fe.Field() + " обязательно"
	case "email":
		return "Неверный формат почты"
	case "min":
		return "Пароль слишком короткий"
	default:
		return "Неверные данные"
	}
}
