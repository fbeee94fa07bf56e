// internal/checks/suite.go
package checks

import (
	"context"

	"github.com/xkilldash9x/camcheck/internal/browser"
)

// Check names, as printed on the result lines.
const (
	NameVideoIsPlaying  = "test_video_is_playing"
	NameTakePhotoButton = "test_take_photo_button"
	NameFileUpload      = "test_file_upload"
	NameCompareButton   = "test_compare_button"
)

// Elements of the page under test.
var (
	VideoLocator         = browser.ByID("video")
	StartButtonLocator   = browser.ByID("startbutton")
	CanvasLocator        = browser.ByID("canvas")
	UploadLocator        = browser.ByID("upload")
	CompareButtonLocator = browser.ByXPath(`//button[@type="submit"]`)
	ResultsLocator       = browser.ByID("results")
)

// DefaultSuite returns the checks in execution order.
func DefaultSuite() []Check {
	return []Check{
		{Name: NameVideoIsPlaying, Run: VideoIsPlaying},
		{Name: NameTakePhotoButton, Run: TakePhotoButton},
		{Name: NameFileUpload, Run: FileUpload},
		{Name: NameCompareButton, Run: CompareButton},
	}
}

// VideoIsPlaying loads the page and expects the camera preview to be shown.
func VideoIsPlaying(ctx context.Context, s browser.Session, t Target) error {
	if err := s.Navigate(ctx, t.URL); err != nil {
		return err
	}
	video, err := s.WaitPresent(ctx, VideoLocator, t.ElementTimeout)
	if err != nil {
		return err
	}
	return assertDisplayed(ctx, video)
}

// TakePhotoButton clicks the capture button and expects the snapshot canvas.
func TakePhotoButton(ctx context.Context, s browser.Session, t Target) error {
	button, err := s.WaitPresent(ctx, StartButtonLocator, t.ElementTimeout)
	if err != nil {
		return err
	}
	if err := button.Click(ctx); err != nil {
		return err
	}
	canvas, err := s.WaitPresent(ctx, CanvasLocator, t.ElementTimeout)
	if err != nil {
		return err
	}
	return assertDisplayed(ctx, canvas)
}

// FileUpload attaches the configured file and expects the input to hold it.
func FileUpload(ctx context.Context, s browser.Session, t Target) error {
	if t.UploadFile == "" {
		return assertionf("no upload file configured (set target.upload_file)")
	}
	upload, err := s.WaitPresent(ctx, UploadLocator, t.ElementTimeout)
	if err != nil {
		return err
	}
	if err := upload.SendKeys(ctx, t.UploadFile); err != nil {
		return err
	}
	value, err := upload.Attribute(ctx, "value")
	if err != nil {
		return err
	}
	if value == "" {
		return assertionf("element %s has an empty value after upload", UploadLocator)
	}
	return nil
}

// CompareButton submits the comparison and waits for the results panel.
func CompareButton(ctx context.Context, s browser.Session, t Target) error {
	button, err := s.WaitPresent(ctx, CompareButtonLocator, t.ElementTimeout)
	if err != nil {
		return err
	}
	if err := button.Click(ctx); err != nil {
		return err
	}
	results, err := s.WaitVisible(ctx, ResultsLocator, t.ResultsTimeout)
	if err != nil {
		return err
	}
	return assertDisplayed(ctx, results)
}

func assertDisplayed(ctx context.Context, el browser.Element) error {
	shown, err := el.IsDisplayed(ctx)
	if err != nil {
		return err
	}
	if !shown {
		return assertionf("element %s is not displayed", el.Locator())
	}
	return nil
}
