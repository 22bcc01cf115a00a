// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Authentication
	KeyAuthRequired           = "auth.required"
	KeyAuthInvalidToken       = "auth.invalid_token"
	KeyAuthTokenExpired       = "auth.token_expired"
	KeyAuthInvalidCredentials = "auth.invalid_credentials"
	KeyAuthUserExists         = "auth.user_exists"
	KeyAuthLoginSuccess       = "auth.login_success"
	KeyAuthLogoutSuccess      = "auth.logout_success"
	KeyAuthRegisterSuccess    = "auth.register_success"

	// Users
	KeyUserNotFound  = "user.not_found"
	KeyUserSuspended = "user.suspended"

	// Listings
	KeyOfferCreated   = "offer.created"
	KeyOfferUpdated   = "offer.updated"
	KeyOfferDeleted   = "offer.deleted"
	KeyOfferNotFound  = "offer.not_found"
	KeyDemandCreated  = "demand.created"
	KeyDemandUpdated  = "demand.updated"
	KeyDemandDeleted  = "demand.deleted"
	KeyDemandNotFound = "demand.not_found"

	// Negotiations
	KeyNegotiationCreated  = "negotiation.created"
	KeyNegotiationUpdated  = "negotiation.updated"
	KeyNegotiationDeleted  = "negotiation.deleted"
	KeyNegotiationNotFound = "negotiation.not_found"

	// Farms
	KeyFarmCreated  = "farm.created"
	KeyFarmUpdated  = "farm.updated"
	KeyFarmDeleted  = "farm.deleted"
	KeyFarmNotFound = "farm.not_found"

	// Budgets
	KeyBudgetCreated  = "budget.created"
	KeyBudgetNotFound = "budget.not_found"

	// Billing
	KeyBillingIntentCreated = "billing.intent_created"
	KeyBillingFailed        = "billing.failed"

	// Admin
	KeyAdminAccessDenied    = "admin.access_denied"
	KeyAdminActionSuccess   = "admin.action_success"
	KeyAdminUserSuspended   = "admin.user_suspended"
	KeyAdminUserUnsuspended = "admin.user_unsuspended"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	// Notifications
	KeyNotificationRead = "notification.read"
)

var enCatalog = map[string]string{
	KeyAuthRequired:           "Authentication required",
	KeyAuthInvalidToken:       "Invalid authentication token",
	KeyAuthTokenExpired:       "Authentication token expired",
	KeyAuthInvalidCredentials: "Invalid email or password",
	KeyAuthUserExists:         "A user with that email or username already exists",
	KeyAuthLoginSuccess:       "Logged in successfully",
	KeyAuthLogoutSuccess:      "Logged out successfully",
	KeyAuthRegisterSuccess:    "Account created successfully",
	KeyUserNotFound:           "User not found",
	KeyUserSuspended:          "Account suspended",
	KeyOfferCreated:           "Offer created",
	KeyOfferUpdated:           "Offer updated",
	KeyOfferDeleted:           "Offer deleted",
	KeyOfferNotFound:          "Offer not found",
	KeyDemandCreated:          "Demand created",
	KeyDemandUpdated:          "Demand updated",
	KeyDemandDeleted:          "Demand deleted",
	KeyDemandNotFound:         "Demand not found",
	KeyNegotiationCreated:     "Negotiation started",
	KeyNegotiationUpdated:     "Negotiation updated",
	KeyNegotiationDeleted:     "Negotiation deleted",
	KeyNegotiationNotFound:    "Negotiation not found",
	KeyFarmCreated:            "Farm created",
	KeyFarmUpdated:            "Farm updated",
	KeyFarmDeleted:            "Farm deleted",
	KeyFarmNotFound:           "Farm not found",
	KeyBudgetCreated:          "Budget created",
	KeyBudgetNotFound:         "Budget not found",
	KeyBillingIntentCreated:   "Payment intent created",
	KeyBillingFailed:          "Payment could not be initiated",
	KeyAdminAccessDenied:      "Administrator access required",
	KeyAdminActionSuccess:     "Action completed",
	KeyAdminUserSuspended:     "User suspended",
	KeyAdminUserUnsuspended:   "User reinstated",
	KeyValidationRequired:     "%s is required",
	KeyValidationInvalid:      "Invalid %s",
	KeyFileUploadSuccess:      "File uploaded",
	KeyFileUploadFailed:       "File upload failed",
	KeyFileInvalidType:        "File type not allowed",
	KeyFileTooLarge:           "File too large",
	KeyNotificationRead:       "Notification marked as read",
}

var esCatalog = map[string]string{
	KeyAuthRequired:           "Se requiere autenticación",
	KeyAuthInvalidToken:       "Token de autenticación inválido",
	KeyAuthTokenExpired:       "El token de autenticación expiró",
	KeyAuthInvalidCredentials: "Correo o contraseña inválidos",
	KeyAuthUserExists:         "Ya existe un usuario con ese correo o nombre",
	KeyAuthLoginSuccess:       "Sesión iniciada",
	KeyAuthLogoutSuccess:      "Sesión cerrada",
	KeyAuthRegisterSuccess:    "Cuenta creada",
	KeyUserNotFound:           "Usuario no encontrado",
	KeyUserSuspended:          "Cuenta suspendida",
	KeyOfferCreated:           "Oferta creada",
	KeyOfferUpdated:           "Oferta actualizada",
	KeyOfferDeleted:           "Oferta eliminada",
	KeyOfferNotFound:          "Oferta no encontrada",
	KeyDemandCreated:          "Demanda creada",
	KeyDemandUpdated:          "Demanda actualizada",
	KeyDemandDeleted:          "Demanda eliminada",
	KeyDemandNotFound:         "Demanda no encontrada",
	KeyNegotiationCreated:     "Negociación iniciada",
	KeyNegotiationUpdated:     "Negociación actualizada",
	KeyNegotiationDeleted:     "Negociación eliminada",
	KeyNegotiationNotFound:    "Negociación no encontrada",
	KeyFarmCreated:            "Finca creada",
	KeyFarmUpdated:            "Finca actualizada",
	KeyFarmDeleted:            "Finca eliminada",
	KeyFarmNotFound:           "Finca no encontrada",
	KeyBudgetCreated:          "Presupuesto creado",
	KeyBudgetNotFound:         "Presupuesto no encontrado",
	KeyBillingIntentCreated:   "Intento de pago creado",
	KeyBillingFailed:          "No se pudo iniciar el pago",
	KeyAdminAccessDenied:      "Se requiere acceso de administrador",
	KeyAdminActionSuccess:     "Acción completada",
	KeyAdminUserSuspended:     "Usuario suspendido",
	KeyAdminUserUnsuspended:   "Usuario reactivado",
	KeyValidationRequired:     "%s es obligatorio",
	KeyValidationInvalid:      "%s inválido",
	KeyFileUploadSuccess:      "Archivo subido",
	KeyFileUploadFailed:       "Error al subir el archivo",
	KeyFileInvalidType:        "Tipo de archivo no permitido",
	KeyFileTooLarge:           "Archivo demasiado grande",
	KeyNotificationRead:       "Notificación marcada como leída",
}
