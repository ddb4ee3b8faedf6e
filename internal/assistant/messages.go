package assistant

// Canned replies. Mission and vision come from the content catalog instead.
const (
	PromptEmpty = "Escríbeme algo para poder ayudarte."

	ReplyGreeting = "¡Hola! Soy el asistente virtual de la institución. " +
		"Puedo mostrarte los programas, buscar uno por nombre o código, " +
		"contarte nuestra misión y visión, decirte la hora o hacer cuentas sencillas."
	ReplyThanks = "¡Con gusto! Si necesitas algo más, aquí estoy."
	ReplyHelp   = "Puedo ayudarte con:\n" +
		"• Ver los programas: \"lista de programas\"\n" +
		"• Buscar por nombre: \"buscar ingenieria\"\n" +
		"• Consultar por código: \"codigo 2\"\n" +
		"• Conocer la misión o la visión: \"cual es la mision\"\n" +
		"• Saber la hora: \"que hora es en madrid\"\n" +
		"• Hacer cuentas: \"cuanto es 4 mas 5\""

	ReplyNoPrograms    = "Aún no hay programas registrados."
	ReplyProgramsIntro = "Estos son los programas registrados: "
	programsSeparator  = " | "

	PromptCode          = "¿Qué código de programa quieres consultar? Por ejemplo: \"codigo 2\"."
	replyCodeFound      = "El código %d corresponde a: %s"
	replyCodeNotFound   = "No encontré un programa con el código %d."
	PromptKeyword       = "¿Qué programa buscas? Escribe una palabra del nombre, por ejemplo: \"buscar sistemas\"."
	ReplySearchIntro    = "Encontré estos programas:"
	ReplySearchNotFound = "No encontré programas con esa palabra. Intenta con otra."

	ReplyNotUnderstood = "No entendí tu mensaje. Puedo ayudarte con:\n" +
		"• Saludos y ayuda: \"hola\", \"ayuda\"\n" +
		"• Lista de programas: \"lista de programas\"\n" +
		"• Búsqueda por nombre: \"buscar ingenieria\"\n" +
		"• Consulta por código: \"codigo 2\"\n" +
		"• Misión y visión: \"mision\", \"vision\"\n" +
		"• Hora por ciudad: \"que hora es en madrid\"\n" +
		"• Cálculos: \"cuanto es 4 mas 5\""

	ApologyStorage = "Lo siento, no pude consultar los programas en este momento. Intenta más tarde."
	ReplyTooLong   = "Tu mensaje es demasiado largo. Intenta con una pregunta más corta."
	ReplyRateLimit = "Estás enviando mensajes muy rápido. Espera un momento e inténtalo de nuevo."
)
