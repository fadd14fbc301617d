package service

// User-facing authentication messages.
const (
	MsgCredentialsRequired = "Correo y contraseña son obligatorios."
	MsgSignInUnavailable   = "Error al iniciar sesión. Intenta más tarde, si el problema persiste contacta con Soporte Técnico."
	MsgAccountDisabled     = "Tu cuenta está desactivada. Contacta con Soporte Técnico."
	MsgSessionRequired     = "Debes iniciar sesión."
	MsgSignOutFailed       = "No se pudo cerrar la sesión."
	MsgPasswordNotUpdated  = "La contraseña no pudo actualizarse"
	MsgPasswordReset       = "Contraseña restablecida"
)
