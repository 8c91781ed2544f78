package resolver

import (
	"context"
	"fmt"
	"strings"
)

// BytesPrefix — маркер ссылки на выгруженный бинарный параметр.
const BytesPrefix = "bytes:"

// FileClient — файловые операции gateway, нужные resolver'у.
type FileClient interface {
	UploadFile(ctx context.Context, data []byte) (string, error)
	DownloadFile(ctx context.Context, id string) ([]byte, error)
}

// BytesResolver разрешает бинарные параметры requests.
//
// Тела requests ходят через очередь как JSON, поэтому сырые байты в
// параметрах не живут: отправитель выгружает их на gateway и кладёт
// вместо значения ссылку "bytes:<id>". Перед вызовом команды resolver
// скачивает такие ссылки обратно в []byte.
type BytesResolver struct {
	client FileClient
}

// NewBytesResolver создаёт resolver поверх файлового клиента gateway.
func NewBytesResolver(client FileClient) *BytesResolver {
	return &BytesResolver{client: client}
}

// ShouldUpload сообщает, нужно ли значение выгружать.
func (r *BytesResolver) ShouldUpload(value any) bool {
	_, ok := value.([]byte)
	return ok
}

// Upload выгружает байты на gateway и возвращает ссылку "bytes:<id>".
func (r *BytesResolver) Upload(ctx context.Context, data []byte) (string, error) {
	id, err := r.client.UploadFile(ctx, data)
	if err != nil {
		return "", fmt.Errorf("upload bytes parameter: %w", err)
	}
	return BytesPrefix + id, nil
}

// ShouldDownload сообщает, является ли значение ссылкой на байты.
func (r *BytesResolver) ShouldDownload(value any) bool {
	s, ok := value.(string)
	return ok && strings.HasPrefix(s, BytesPrefix)
}

// Download скачивает байты по ссылке "bytes:<id>".
func (r *BytesResolver) Download(ctx context.Context, ref string) ([]byte, error) {
	id := strings.TrimPrefix(ref, BytesPrefix)
	data, err := r.client.DownloadFile(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("download bytes parameter %s: %w", id, err)
	}
	return data, nil
}

// ResolveParameters обходит параметры request и скачивает все
// bytes-ссылки. Реализует processor.ParameterResolver.
func (r *BytesResolver) ResolveParameters(ctx context.Context, params map[string]any) (map[string]any, error) {
	resolved := make(map[string]any, len(params))
	for key, value := range params {
		if !r.ShouldDownload(value) {
			resolved[key] = value
			continue
		}

		data, err := r.Download(ctx, value.(string))
		if err != nil {
			return nil, err
		}
		resolved[key] = data
	}
	return resolved, nil
}
