package rutas

import "github.com/matzehuels/motorrutas/pkg/partition"

// ErrorMessage is set on [Result.Err] when every candidate failed.
const ErrorMessage = "No se pudo cargar la ruta desde el servidor. Se muestran establecimientos de ejemplo."

var placeholder = []partition.Item{
	{ID: "ejemplo-1", Label: "Mesa de Partes"},
	{ID: "ejemplo-2", Label: "Secretaría Académica"},
	{ID: "ejemplo-3", Label: "Dirección de Escuela"},
	{ID: "ejemplo-4", Label: "Decanato"},
}

// Placeholder returns a copy of the offline item list.
func Placeholder() []partition.Item {
	out := make([]partition.Item, len(placeholder))
	copy(out, placeholder)
	return out
}
