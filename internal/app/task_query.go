package app

import (
	"strconv"
	"strings"

	"gotasker/internal/ports/repositories"
)

const sortDirectionDesc = "desc"

// ParseTaskFilter строит фильтр списка задач из сырых строк запроса.
// Разбор терпим к мусору: непарсящиеся значения заменяются
// умолчаниями вместо ошибки.
//
//   - completed: только строка "true" включает фильтр по выполненным;
//     любое другое непустое значение фильтрует по невыполненным;
//   - sortBy: "поле:направление", направление отличное от "desc"
//     трактуется как возрастание;
//   - limit, skip: нечисловые и отрицательные значения сбрасываются в ноль
//     (ноль означает отсутствие ограничения и смещения).
func ParseTaskFilter(completed, sortBy, limit, skip string) repositories.TaskFilter {
	var filter repositories.TaskFilter

	if completed != "" {
		value := completed == "true"
		filter.Completed = &value
	}

	if sortBy != "" {
		parts := strings.SplitN(sortBy, ":", 2)
		filter.SortBy = parts[0]
		if len(parts) == 2 {
			filter.SortDesc = parts[1] == sortDirectionDesc
		}
	}

	filter.Limit = parseNonNegative(limit)
	filter.Skip = parseNonNegative(skip)

	return filter
}

func parseNonNegative(raw string) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}
