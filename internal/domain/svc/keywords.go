package svc

// Locale tables for sc.exe output. Rows are matched in order against the text
// that follows a marker, with the tool's own casing; the first hit wins.
// Supporting another locale means adding rows here.

var startupMarkers = []string{"START_TYPE", "TIPO_INICIO"}

var stateMarkers = []string{"STATE", "ESTADO"}

type keyword struct {
	token string
	value string
}

var startupKeywords = []keyword{
	{token: "AUTO_START", value: string(StartupAuto)},
	{token: "INICIO_AUTOMÁTICO", value: string(StartupAuto)},
	{token: "INICIO_AUTOMATICO", value: string(StartupAuto)},
	{token: "AUTOMÁTICO", value: string(StartupAuto)},
	{token: "AUTOMATICO", value: string(StartupAuto)},
	{token: "DEMAND_START", value: string(StartupDemand)},
	{token: "INICIO_A_PETICIÓN", value: string(StartupDemand)},
	{token: "INICIO_A_PETICION", value: string(StartupDemand)},
	{token: "DEMANDA", value: string(StartupDemand)},
	{token: "DISABLED", value: string(StartupDisabled)},
	{token: "DESHABILITADO", value: string(StartupDisabled)},
	{token: "DESACTIVADO", value: string(StartupDisabled)},
}

var stateKeywords = []keyword{
	{token: "RUNNING", value: string(StateRunning)},
	{token: "EN_EJECUCIÓN", value: string(StateRunning)},
	{token: "EN_EJECUCION", value: string(StateRunning)},
	{token: "EJECUTANDO", value: string(StateRunning)},
	{token: "STOPPED", value: string(StateStopped)},
	{token: "DETENIDO", value: string(StateStopped)},
}
