package expire_reservations

// Result итоги одного прохода обработчика
type Result struct {
	Found     int // Найдено просроченных активных бронирований
	Completed int // Переведено в completed
	Skipped   int // Пропущено: статус изменился параллельно
	Failed    int // Не обработано из-за ошибок
}
