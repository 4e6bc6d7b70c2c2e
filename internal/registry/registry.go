package registry

import (
	"sync"

	"github.com/shaiso/Codeshift/internal/domain"
)

// Registry — потокобезопасный реестр файлов.
//
// Update — единственная точка, где конкурентные писатели трогают общее
// состояние: поиск по ключу и замена выполняются под одной блокировкой.
// Два обновления одного файла разрешаются в порядке завершения (последний
// выигрывает).
type Registry struct {
	mu sync.RWMutex

	// files — записи в порядке загрузки.
	files []domain.FileRecord

	// index — FileName → позиция в files.
	index map[string]int

	// selected — ключ выбранного файла ("" — ничего не выбрано).
	selected string
}

// New создаёт пустой реестр.
func New() *Registry {
	return &Registry{
		index: make(map[string]int),
	}
}

// SetAll заменяет список файлов целиком.
//
// Если в records встречается одинаковый FileName, остаётся последняя запись
// (на позиции первой). Выбор сохраняется, если файл с таким ключом есть в
// новом списке.
func (r *Registry) SetAll(records []domain.FileRecord) {
	files := make([]domain.FileRecord, 0, len(records))
	index := make(map[string]int, len(records))

	for _, rec := range records {
		if i, exists := index[rec.FileName]; exists {
			files[i] = rec
			continue
		}
		index[rec.FileName] = len(files)
		files = append(files, rec)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = files
	r.index = index
}

// Update сливает patch ровно в одну запись с данным FileName.
// Возвращает false (и ничего не меняет), если такой записи нет.
func (r *Registry) Update(fileName string, patch domain.FilePatch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	i, ok := r.index[fileName]
	if !ok {
		return false
	}

	r.files[i] = patch.Apply(r.files[i])
	return true
}

// Select делает файл активным. Возвращает false, если файла нет в реестре.
func (r *Registry) Select(fileName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.index[fileName]; !ok {
		return false
	}
	r.selected = fileName
	return true
}

// Unselect сбрасывает выбор.
func (r *Registry) Unselect() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.selected = ""
}

// Selected возвращает выбранную запись, вычисленную из текущего списка.
func (r *Registry) Selected() (domain.FileRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.selected == "" {
		return domain.FileRecord{}, false
	}
	i, ok := r.index[r.selected]
	if !ok {
		return domain.FileRecord{}, false
	}
	return r.files[i], true
}

// Get возвращает копию записи по FileName.
func (r *Registry) Get(fileName string) (domain.FileRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i, ok := r.index[fileName]
	if !ok {
		return domain.FileRecord{}, false
	}
	return r.files[i], true
}

// Files возвращает копию списка в порядке загрузки.
func (r *Registry) Files() []domain.FileRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.FileRecord, len(r.files))
	copy(out, r.files)
	return out
}

// Len возвращает количество файлов.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.files)
}

// Clear очищает список и выбор.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.files = nil
	r.index = make(map[string]int)
	r.selected = ""
}
