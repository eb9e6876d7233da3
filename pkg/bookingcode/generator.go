// Package bookingcode генерирует короткие коды подтверждения бронирований.
package bookingcode

import (
	"fmt"

	"github.com/google/uuid"
)

// Alphabet символы кода без визуально похожих пар (0/O, 1/I)
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultLength длина кода по умолчанию
const DefaultLength = 8

// в байте 6 UUID v4 старшие биты заняты версией, его пропускаем
const maxLength = 15

// Generator генератор кодов на основе случайных UUID v4
type Generator struct {
	length int
}

// NewGenerator создает генератор кодов заданной длины (не длиннее 15 символов)
func NewGenerator(length int) *Generator {
	if length <= 0 || length > maxLength {
		length = DefaultLength
	}
	return &Generator{length: length}
}

// Generate возвращает новый код.
// Уникальность кода гарантирует уникальный индекс в БД, вызывающий повторяет генерацию при коллизии.
func (g *Generator) Generate() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("bookingcode: generate random: %w", err)
	}

	entropy := make([]byte, 0, maxLength)
	entropy = append(entropy, id[:6]...)
	entropy = append(entropy, id[7:]...)

	code := make([]byte, g.length)
	for i := range code {
		// len(Alphabet) = 32, остаток берет младшие 5 бит
		code[i] = Alphabet[int(entropy[i])%len(Alphabet)]
	}
	return string(code), nil
}
