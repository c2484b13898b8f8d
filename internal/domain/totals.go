package domain

import "fmt"

// Денежные суммы считаются только в центах; деление на 100 — строго
// на границе представления (FormatMajor).

// PerItemTotal — стоимость позиции в центах. Отсутствующее количество
// трактуется как 1, отсутствующая цена как 0.
func PerItemTotal(it CartLineItem) int64 {
	price := it.PriceCents
	if price < 0 {
		price = 0
	}
	qty := it.Quantity
	if qty <= 0 {
		qty = 1
	}
	return price * qty
}

// AggregateTotal — сумма корзины в центах.
func AggregateTotal(items []CartLineItem) int64 {
	var sum int64
	for _, it := range items {
		sum += PerItemTotal(it)
	}
	return sum
}

// ItemCount — суммарное количество товаров.
func ItemCount(items []CartLineItem) int64 {
	var n int64
	for _, it := range items {
		qty := it.Quantity
		if qty <= 0 {
			qty = 1
		}
		n += qty
	}
	return n
}

// FormatMajor переводит центы в строку основной валютной единицы.
func FormatMajor(cents int64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}
