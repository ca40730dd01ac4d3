package catalog

// WouldCreateCycle determina si asignar proposedParentID como padre de
// categoryID produciría una jerarquía circular. parentOf es el índice
// id → parentID de todas las categorías ("" = raíz, clave ausente = no existe).
//
// Camina la cadena de ancestros desde proposedParentID manteniendo un conjunto
// de visitados sembrado con categoryID. El recorrido está acotado por el total
// de nodos: o llega a una raíz (falso), o revisita un nodo (verdadero).
func WouldCreateCycle(categoryID, proposedParentID string, parentOf map[string]string) bool {
	if proposedParentID == "" {
		return false
	}
	if categoryID == proposedParentID {
		return true
	}

	visited := map[string]bool{categoryID: true}
	current := proposedParentID

	for current != "" {
		if visited[current] {
			return true
		}
		visited[current] = true

		parent, ok := parentOf[current]
		if !ok {
			// Cadena rota (categoría inexistente): no hay ciclo alcanzable.
			break
		}
		current = parent
	}

	return false
}

// Ancestors devuelve la cadena de ancestros de categoryID (del padre inmediato
// a la raíz) según el índice parentOf. Se detiene ante un ciclo o cadena rota.
func Ancestors(categoryID string, parentOf map[string]string) []string {
	var chain []string
	seen := map[string]bool{categoryID: true}

	current := parentOf[categoryID]
	for current != "" && !seen[current] {
		chain = append(chain, current)
		seen[current] = true
		current = parentOf[current]
	}
	return chain
}
