package icon_processor

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/appicon/icon-generator/archive"
	"github.com/appicon/icon-generator/container"
	"github.com/appicon/icon-generator/icons"
	"github.com/appicon/icon-generator/internal/global"
	"github.com/appicon/icon-generator/task"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/h2non/filetype/types"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/crypto/sha3"
)

type Worker struct{}

func (w Worker) Work(ctx global.Context, tsk task.Task, result *task.Result) (err error) {
	if result == nil {
		return fmt.Errorf("nil for result")
	}

	zap.S().Debugw("starting new task",
		"task_id", tsk.ID,
	)

	finish := ctx.Inst().Prometheus.StartTask()
	result.StartedAt = time.Now()

	defer func() {
		if pnk := recover(); pnk != nil {
			err = multierr.Append(fmt.Errorf("panic at runtime: %v", pnk), err)
		}

		result.FinishedAt = time.Now()

		finish(err == nil)
	}()

	done := ctx.Inst().Prometheus.DownloadFile()

	raw, match, err := w.downloadFile(ctx, tsk)
	if err != nil {
		return multierr.Append(fmt.Errorf("failed at download file"), err)
	}

	done()

	zap.S().Debugw("downloaded file",
		"task_id", tsk.ID,
		"content_type", match.MIME.Value,
	)

	ctx.Inst().Prometheus.InputFileType(match.MIME.Value)
	ctx.Inst().Prometheus.TotalBytesDownloaded(len(raw))

	info, err := icons.Inspect(raw)
	if err != nil {
		return multierr.Append(fmt.Errorf("failed at inspect"), err)
	}

	if (tsk.Limits.MaxWidth != 0 && tsk.Limits.MaxWidth < info.Width) || (tsk.Limits.MaxHeight != 0 && tsk.Limits.MaxHeight < info.Height) {
		return fmt.Errorf("file dimensions are too big (%dx%d where the limit is %dx%d)", info.Width, info.Height, tsk.Limits.MaxWidth, tsk.Limits.MaxHeight)
	}

	result.ImageInput = task.ResultFile{
		Name:        "original",
		SHA3:        sha3Hex(raw),
		ContentType: match.MIME.Value,
		Size:        len(raw),
		Key:         tsk.Input.Key,
		Bucket:      tsk.Input.Bucket,
		Width:       info.Width,
		Height:      info.Height,
	}

	out, err := w.generate(ctx, tsk, raw, result)
	if err != nil {
		return multierr.Append(fmt.Errorf("failed at generate icons"), err)
	}

	zap.S().Debugw("generated icons",
		"count", len(out),
		"failed_sizes", result.FailedSizes,
		"task_id", tsk.ID,
	)

	done = ctx.Inst().Prometheus.UploadResults()

	if err := w.uploadResults(ctx, tsk, out, result); err != nil {
		return multierr.Append(fmt.Errorf("failed at upload results"), err)
	}

	done()

	zap.S().Debugw("uploaded results",
		"task_id", tsk.ID,
	)

	return nil
}

func (Worker) downloadFile(ctx global.Context, tsk task.Task) (raw []byte, match types.Type, err error) {
	buf := aws.NewWriteAtBuffer([]byte{})

	err = ctx.Inst().S3.DownloadFile(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(tsk.Input.Bucket),
		Key:    aws.String(tsk.Input.Key),
	})
	if err != nil {
		return nil, types.Type{}, multierr.Append(fmt.Errorf("failed at s3 download"), err)
	}

	match = container.Match(buf.Bytes())
	if !container.Supported(match) {
		return nil, types.Type{}, fmt.Errorf("failed at match: unsupported image format: %v", match.Extension)
	}

	return buf.Bytes(), match, nil
}

func (Worker) generate(ctx global.Context, tsk task.Task, raw []byte, result *task.Result) (icons.Icons, error) {
	opts := icons.Options{
		MaxPixels: ctx.Config().Worker.MaxPixels,
		Observe: func(stage icons.Stage, d time.Duration) {
			ctx.Inst().Prometheus.ObserveStage(string(stage), d)
		},
	}
	if tsk.Partial {
		opts.Policy = icons.FailurePolicyPartial
	}

	out, err := icons.GenerateWith(raw, opts)

	var failed *icons.VariantErrors
	if errors.As(err, &failed) && len(out) > 0 {
		for _, size := range failed.Sizes() {
			result.FailedSizes = append(result.FailedSizes, int(size))
		}

		zap.S().Warnw("some icon sizes failed",
			"task_id", tsk.ID,
			"error", err,
		)
	} else if err != nil {
		return nil, err
	}

	ctx.Inst().Prometheus.IconsGenerated(len(out))

	return out, nil
}

func (Worker) uploadResults(ctx global.Context, tsk task.Task, out icons.Icons, result *task.Result) (err error) {
	defer func() {
		if pnk := recover(); pnk != nil {
			err = multierr.Append(fmt.Errorf("panic at runtime: %v", pnk), err)
		}
	}()

	wg := sync.WaitGroup{}

	var (
		uploadErr error
		mtx       sync.Mutex
	)

	upload := func(name string, contentType string, data []byte, size int) {
		defer wg.Done()

		key := path.Join(tsk.Output.Prefix, name)

		if err := ctx.Inst().S3.UploadFile(ctx, &s3manager.UploadInput{
			Body:         bytes.NewReader(data),
			ACL:          aws.String(tsk.Output.ACL),
			Bucket:       aws.String(tsk.Output.Bucket),
			CacheControl: aws.String(tsk.Output.CacheControl),
			ContentType:  aws.String(contentType),
			Key:          aws.String(key),
		}); err != nil {
			mtx.Lock()
			defer mtx.Unlock()

			uploadErr = multierr.Append(fmt.Errorf("failed at upload %s", name), multierr.Append(err, uploadErr))

			return
		}

		ctx.Inst().Prometheus.TotalBytesUploaded(len(data))

		file := task.ResultFile{
			Name:         name,
			SHA3:         sha3Hex(data),
			ContentType:  contentType,
			Size:         len(data),
			Key:          key,
			Bucket:       tsk.Output.Bucket,
			ACL:          tsk.Output.ACL,
			CacheControl: tsk.Output.CacheControl,
			Width:        size,
			Height:       size,
		}

		mtx.Lock()
		defer mtx.Unlock()

		if size == 0 {
			result.ArchiveOutput = &file
		} else {
			result.ImageOutputs = append(result.ImageOutputs, file)
		}
	}

	for _, size := range out.Sizes() {
		wg.Add(1)
		go upload(archive.EntryName(size), container.MimePNG, out[size], int(size))
	}

	if tsk.Archive {
		done := ctx.Inst().Prometheus.MakeArchive()
		zipped, err := archive.Zip(out)
		done()
		if err != nil {
			wg.Wait()
			return multierr.Append(fmt.Errorf("failed at make archive"), multierr.Append(err, uploadErr))
		}

		wg.Add(1)
		go upload(archive.FileName, container.MimeZIP, zipped, 0)
	}

	wg.Wait()

	sort.Slice(result.ImageOutputs, func(i, j int) bool {
		return result.ImageOutputs[i].Width < result.ImageOutputs[j].Width
	})

	return uploadErr
}

func sha3Hex(data []byte) string {
	sum := sha3.Sum512(data)

	return hex.EncodeToString(sum[:])
}
