package email

import (
	"fmt"
	"time"
)

// Both workflow emails share one layout; only the body paragraphs and the
// footer differ per stage.

// layoutHTML wraps a body fragment in the shared email chrome.
func layoutHTML(name, body, footer string) string {
	greeting := "Hi there"
	if name != "" {
		greeting = fmt.Sprintf("Hi %s", name)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif; line-height: 1.7; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">

  <p style="font-size: 16px;">%s,</p>

%s

  <p style="margin-top: 30px;">
    Warmly,<br>
    <strong><a href="https://www.swap-space.com/">The SwapSpace Team</a></strong>
  </p>

  <hr style="border: none; border-top: 1px solid #eee; margin: 30px 0;">

  <p style="font-size: 12px; color: #888; text-align: center;">
%s
  </p>
</body>
</html>`, greeting, body, footer)
}

func shortFooter() string {
	return fmt.Sprintf("    ©%d SwapSpace. All rights reserved.", time.Now().Year())
}

func fullFooter() string {
	return fmt.Sprintf(`    SwapSpace Europe LTD<br>
    82a James Carter Road Mildenhall IP28 7DE, United Kingdom<br>
    ©%d SwapSpace. All rights reserved.`, time.Now().Year())
}

// ackHTML renders the photo-submission acknowledgment body.
func ackHTML(name string) string {
	body := `  <p>Thank you for applying to join SwapSpace.</p>

  <p>We've received your application successfully. To complete the review process, we just need a few photos of your home. Between 1 and 5 photos is sufficient, and they do not need to be professionally taken.</p>

  <p>Once these have been shared, our team will be able to complete the review.</p>

  <p>You can respond to this email with a few photos of your home and our team will take a look.</p>

  <p>We are excited to see the rest of your home. Please let us know if you have any questions!</p>`

	return layoutHTML(name, body, shortFooter())
}

// approvalHTML renders the acceptance-notice body.
func approvalHTML(name string) string {
	body := `  <p>Thank you for applying to join our members-only community.</p>

  <p>We’re pleased to let you know that you’ve been accepted into SwapSpace and now have full access to the platform.</p>

  <p>As a new member, you’ve earned <strong>7 SwapCredit</strong>, which allows you to travel before you host making it easier to plan your first swap with confidence.</p>

  <p><strong>To get started, just follow these simple steps:</strong></p>
  <p><strong>Step 1:</strong> Enter your first and last name, then create and confirm your password.</p>
  <p><strong>Step 2:</strong> Check your inbox and click the verification link we send you, this will take you straight into the platform.</p>
  <p><strong>Step 3:</strong> Complete your home listing so other members can discover you.</p>
  <p><strong>Step 4:</strong> Finish the quick identity verification to activate your profile fully.</p>
  <p>SwapSpace is a members-only community, and every member lists their home even if they plan to travel first. You can upload photos, add details, and edit everything at any time.</p>
  <p>If you have any questions along the way, just reply to this email we’re happy to help.</p>

  <a
    href="https://app.swap-space.com/signup"
    style="
      display: inline-flex;
      align-items: center;
      width: fit-content;
      gap: 6px;
      margin-top: 12px;
      padding: 12px 24px;
      background-color: #079455;
      color: #fff;
      font-size: 14px;
      font-weight: 400;
      font-family: 'General Sans', sans-serif;
      text-decoration: none;
      border-radius: 40px;
      cursor: pointer;
      transition: background-color 0.2s ease, transform 0.1s ease;
    "
  >
    Create your SwapSpace account
  </a>

  <p>To make setup easy, we’ve also put together simple step-by-step guides:</p>
  <a href="https://blog.swap-space.com/2025/11/15/how-to-list-your-home-on-swapspace/">How to list your home on SwapSpace</a><br>
  <a href="https://www.swap-space.com/guides-pages/photoguidelines">Photo upload guidelines</a>

  <p>If anything is unclear, you can <a href="https://calendly.com/olakunle-swap-space/swapspace-research">book a live onboarding call</a> and we’ll walk you through it or simply reply to this email.</p>`

	return layoutHTML(name, body, fullFooter())
}
