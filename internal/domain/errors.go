package domain

import "errors"

var (
	// ErrInvalidIdentifier — Steam ID не прошёл проверку формата.
	ErrInvalidIdentifier = errors.New("invalid steam id")

	// ErrNotFound — записи для Steam ID нет в хранилище.
	ErrNotFound = errors.New("profile not found")

	// ErrCorruptRecord — сохранённую запись не удалось разобрать.
	ErrCorruptRecord = errors.New("corrupt profile record")

	// ErrRemoteFetch — запрос к Steam API не удался целиком.
	ErrRemoteFetch = errors.New("steam api request failed")

	// ErrEncoding — запись не удалось сериализовать перед сохранением.
	ErrEncoding = errors.New("profile encoding failed")
)
