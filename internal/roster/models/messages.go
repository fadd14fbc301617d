package models

import "fmt"

// Operator-facing messages. The roster's operators work in Spanish, so every
// user-visible string is looked up here rather than built ad hoc.
const (
	MsgRequiredFields     = "Todos los campos son obligatorios."
	MsgMissingData        = "Faltan datos obligatorios"
	MsgRequired           = "Campo obligatorio."
	MsgInvalidEmail       = "Correo electrónico inválido."
	MsgInvalidBirthDate   = "Fecha de nacimiento inválida."
	MsgInvalidSex         = "Sexo inválido."
	MsgInvalidRole        = "Rol inválido."
	MsgInvalidPlace       = "Lugar inválido."
	MsgInvalidLeader      = "El líder seleccionado no existe."
	MsgSelfReference      = "Un afiliado no puede ser su propio líder."
	MsgPasswordPolicy     = "La contraseña debe tener al menos 8 caracteres, una mayúscula, una minúscula, un número y un símbolo."
	MsgPasswordRequired   = "La contraseña y la confirmación son requeridas"
	MsgPasswordMismatch   = "Las contraseñas no coinciden"
	MsgDPIProfile         = "Este DPI ya se encuentra registrado a un LIDER."
	MsgDPIAffiliate       = "Este DPI ya se encuentra registrado a un AFILIADO."
	MsgCheckEmailFailed   = "Error al verificar el correo."
	MsgCheckDPIProfile    = "Error al verificar DPI en perfiles."
	MsgCheckDPIAffiliate  = "Error al verificar DPI ya esta afiliado."
	MsgProfileSaveFailed  = "Error al guardar perfil."
	MsgIdentityFailed     = "Error al crear el usuario."
	MsgPartialAccount     = "La operación quedó incompleta. Contacta con Soporte Técnico."
	MsgAccountCreated     = "Usuario creado con éxito."
	MsgAccountUpdated     = "Usuario actualizado con éxito."
	MsgLeaderHasMembers   = "No se puede eliminar un líder que tiene afiliados asignados."
	MsgLeaderDeleteFailed = "Error al eliminar el líder."
	MsgForbidden          = "No tienes permiso para realizar esta acción."
	MsgProfileNotFound    = "Usuario no encontrado."
	MsgAffiliateNotFound  = "Afiliado no encontrado."
	MsgRoleNotFound       = "Rol no encontrado."
	MsgLoadFailed         = "Error al cargar los datos."
	MsgSaveFailed         = "Error al guardar los datos."
)

// MsgEmailTaken is the conflict message for an email already in use.
func MsgEmailTaken(email string) string {
	return fmt.Sprintf("%s ya esta registrado, elija un usuario diferente", email)
}
