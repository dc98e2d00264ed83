package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Dosada05/bug-arena/repositories"
)

func intPtr(v int) *int {
	return &v
}

// mapRepositoryError переводит сентинелы слоя репозиториев в сервисные,
// чтобы обработчики зависели только от services.Err*.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, repositories.ErrUserNickConflict):
		return ErrUserNicknameConflict
	case errors.Is(err, repositories.ErrCombatantNotFound):
		return ErrCombatantNotFound
	case errors.Is(err, repositories.ErrCombatantNameConflict):
		return ErrCombatantNameConflict
	case errors.Is(err, repositories.ErrBattleNotFound):
		return ErrBattleNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNameConflict):
		return ErrTournamentNameConflict
	case errors.Is(err, repositories.ErrApplicationNotFound):
		return ErrApplicationNotFound
	case errors.Is(err, repositories.ErrApplicationConflict):
		return ErrApplicationConflict
	case errors.Is(err, repositories.ErrTournamentMatchNotFound):
		return ErrMatchNotFound
	default:
		return err
	}
}

// combatantLocker сериализует обновления счётчиков побед/поражений.
// Мьютексы берутся в порядке возрастания ID, чтобы исключить дедлок
// между двумя одновременными боями одной пары.
type combatantLocker struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newCombatantLocker() *combatantLocker {
	return &combatantLocker{locks: make(map[int]*sync.Mutex)}
}

func (l *combatantLocker) lockFor(id int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}

// LockPair блокирует оба бойца и возвращает функцию разблокировки.
func (l *combatantLocker) LockPair(id1, id2 int) func() {
	first, second := id1, id2
	if second < first {
		first, second = second, first
	}
	m1 := l.lockFor(first)
	m1.Lock()
	if first == second {
		return m1.Unlock
	}
	m2 := l.lockFor(second)
	m2.Lock()
	return func() {
		m2.Unlock()
		m1.Unlock()
	}
}

// GetExtensionFromContentType возвращает расширение файла для загрузки
// изображений бойцов.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
